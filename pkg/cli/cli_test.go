package cli

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athena-demo/internal/app"
	"athena-demo/internal/config"
	"athena-demo/internal/domain"
	"athena-demo/internal/engine"
	"athena-demo/internal/testutil"
)

const listingsCSV = `SALE TYPE,PROPERTY TYPE,PRICE
MLS Listing,Single Family Residential,100
MLS Listing,Single Family Residential,300
MLS Listing,Condo,500
`

// isolateEnv clears the variables the config layer reads so the host
// environment cannot leak into a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BUCKET", "OBJECT_KEY", "LOCAL_PATH", "DATABASE_NAME", "TABLE_NAME",
		"OUTPUT_LOCATION", "WORK_GROUP", "REGION", "ENDPOINT", "FILTER_VALUE",
		"LOG_LEVEL", "LOG_FORMAT", "POLL_INTERVAL", "QUERY_TIMEOUT", "TOLERANCE",
		"CONTINUE_ON_QUERY_FAILURE", "KEY_ID", "SECRET",
	} {
		t.Setenv(k, "")
	}
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listings.csv")
	require.NoError(t, os.WriteFile(path, []byte(listingsCSV), 0o600))
	return path
}

// remoteEngine stands in for Athena with a DuckDB table holding the same
// rows as listingsCSV.
func remoteEngine(t *testing.T) *testutil.DuckQueryEngine {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE redfin_house_data (property_type VARCHAR, price BIGINT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO redfin_house_data VALUES
		('Single Family Residential', 100),
		('Single Family Residential', 300),
		('Condo', 500)`)
	require.NoError(t, err)
	return testutil.NewDuckQueryEngine(db)
}

func fakeFactory(store domain.ObjectStore, eng domain.QueryEngine) AppFactory {
	return func(_ context.Context, cfg *config.Config, logger *slog.Logger) (*app.App, error) {
		local, err := engine.Open()
		if err != nil {
			return nil, err
		}
		return app.New(app.Deps{Cfg: cfg, Store: store, Engine: eng, Local: local, Logger: logger})
	}
}

func noAWS(t *testing.T) AppFactory {
	return func(context.Context, *config.Config, *slog.Logger) (*app.App, error) {
		t.Fatal("command must not build cloud clients")
		return nil, nil
	}
}

func runCLI(t *testing.T, factory AppFactory, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(factory)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, noAWS(t), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "athena-demo version dev")

	out, _, err = runCLI(t, noAWS(t), "version", "-o", "json")
	require.NoError(t, err)
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "dev", v["version"])
}

func TestUnsupportedOutputFormat(t *testing.T) {
	_, _, err := runCLI(t, noAWS(t), "version", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported output format "yaml"`)
}

func TestDDL(t *testing.T) {
	isolateEnv(t)

	out, _, err := runCLI(t, noAWS(t), "ddl", "--bucket", "my-bucket")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE DATABASE IF NOT EXISTS `redfin`;")
	assert.Contains(t, out, "CREATE EXTERNAL TABLE `redfin`.`redfin_house_data`")
	assert.Contains(t, out, "LOCATION 's3://my-bucket/redfin/'")
	assert.Contains(t, out, `WHERE "property_type" = 'Single Family Residential';`)
}

func TestDDL_MissingBucket(t *testing.T) {
	isolateEnv(t)

	_, _, err := runCLI(t, noAWS(t), "ddl")
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "validation", errorObject(err)["code"])
}

func TestDDL_ConfigFileAndFlagPrecedence(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("bucket: file-bucket\ndatabase_name: filedb\n"), 0o600))
	t.Setenv("DATABASE_NAME", "envdb")

	out, _, err := runCLI(t, noAWS(t), "ddl", "-o", "json", "--config", cfgPath, "--table", "flag_table")
	require.NoError(t, err)

	var got struct {
		Statements []string `json:"statements"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Statements, 3)
	assert.Equal(t, "CREATE DATABASE IF NOT EXISTS `envdb`", got.Statements[0])
	assert.Contains(t, got.Statements[1], "`envdb`.`flag_table`")
	assert.Contains(t, got.Statements[1], "s3://file-bucket/redfin/")
	assert.Contains(t, got.Statements[2], `FROM "flag_table"`)
}

func TestLocal(t *testing.T) {
	isolateEnv(t)
	path := writeCSV(t)

	out, _, err := runCLI(t, noAWS(t), "local", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "Average price of Single Family Residential properties: 200\n", out)

	out, _, err = runCLI(t, noAWS(t), "local", "--file", path, "--filter", "Townhouse", "-o", "json")
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Nil(t, got["average"])
	assert.Equal(t, "Townhouse", got["filter"])
}

func TestLocal_MissingFile(t *testing.T) {
	isolateEnv(t)
	_, _, err := runCLI(t, noAWS(t), "local", "--file", filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	isolateEnv(t)
	path := writeCSV(t)
	store := &testutil.MockObjectStore{}
	remote := remoteEngine(t)

	out, _, err := runCLI(t, fakeFactory(store, remote),
		"run", "--bucket", "b", "--file", path, "--poll-interval", "1ms")
	require.NoError(t, err)

	assert.Contains(t, store.Objects, "s3://b/redfin/redfin_2023-04-20-18-17-37.csv")
	lines := strings.Split(out, "\n")
	assert.Equal(t, "Athena query result:", lines[0])
	assert.Contains(t, out, "average_price")
	assert.Contains(t, out, "| 200 ")
	assert.Contains(t, out, "\n"+strings.Repeat("-", 80)+"\n")
	assert.Contains(t, out, "Average price of Single Family Residential properties: 200\n")
	assert.Contains(t, out, "Athena and local averages agree.")
}

func TestRun_JSON(t *testing.T) {
	isolateEnv(t)
	path := writeCSV(t)

	out, _, err := runCLI(t, fakeFactory(&testutil.MockObjectStore{}, remoteEngine(t)),
		"run", "-o", "json", "--bucket", "b", "--file", path, "--poll-interval", "1ms")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "SUCCEEDED", got["state"])
	assert.InDelta(t, 200.0, got["remote_average"], 1e-9)
	assert.InDelta(t, 200.0, got["local_average"], 1e-9)
	assert.Equal(t, true, got["match"])
	assert.Equal(t, "s3://b/redfin/redfin_2023-04-20-18-17-37.csv", got["target"])
}

func TestQuery_Failure(t *testing.T) {
	isolateEnv(t)
	eng := &testutil.MockQueryEngine{
		StatusFn: testutil.StatusSequence("Insufficient Permissions", domain.QueryStateRunning, domain.QueryStateFailed),
	}

	_, stderr, err := runCLI(t, fakeFactory(&testutil.MockObjectStore{}, eng),
		"query", "--bucket", "b", "--poll-interval", "1ms")
	var qErr *domain.QueryFailedError
	require.ErrorAs(t, err, &qErr)
	assert.Contains(t, err.Error(), "Insufficient Permissions")
	assert.Contains(t, stderr, "Insufficient Permissions")

	obj := errorObject(err)
	assert.Equal(t, "query_failed", obj["code"])
	assert.Equal(t, "exec-1", obj["execution_id"])
	assert.Equal(t, "Insufficient Permissions", obj["reason"])
}

func TestQuery_CustomSQL(t *testing.T) {
	isolateEnv(t)
	remote := remoteEngine(t)

	out, _, err := runCLI(t, fakeFactory(&testutil.MockObjectStore{}, remote),
		"query", "--bucket", "b", "--poll-interval", "1ms",
		"SELECT property_type, COUNT(*) AS n FROM redfin_house_data GROUP BY property_type ORDER BY property_type")
	require.NoError(t, err)
	assert.Contains(t, out, "property_type")
	assert.Contains(t, out, "Condo")
	assert.Contains(t, out, "Single Family Residential")
	require.Len(t, remote.SQL, 1)
}

func TestUpload_ExplicitTarget(t *testing.T) {
	isolateEnv(t)
	path := writeCSV(t)
	store := &testutil.MockObjectStore{}

	out, _, err := runCLI(t, fakeFactory(store, &testutil.MockQueryEngine{}),
		"upload", "--file", path, "s3://other/data/listings.csv")
	require.NoError(t, err)
	assert.Equal(t, listingsCSV, store.Objects["s3://other/data/listings.csv"])
	assert.Contains(t, out, "to s3://other/data/listings.csv")
}

func TestUpload_BadTarget(t *testing.T) {
	isolateEnv(t)
	_, _, err := runCLI(t, noAWS(t), "upload", "http://nope")
	require.Error(t, err)
}

func TestRegister(t *testing.T) {
	isolateEnv(t)
	remote := remoteEngine(t)

	out, _, err := runCLI(t, fakeFactory(&testutil.MockObjectStore{}, remote),
		"register", "--bucket", "b", "--poll-interval", "1ms", "--replace")
	require.NoError(t, err)
	assert.Equal(t, "Registered redfin.redfin_house_data at s3://b/redfin/\n", out)
	require.Len(t, remote.SQL, 3)
	assert.True(t, strings.HasPrefix(remote.SQL[1], "DROP TABLE IF EXISTS"))
}
