package aws

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/s3/tests"
)

const (
	localstackPort = "4566/tcp"
	testRegion     = "us-east-1"
)

// startLocalStack runs a LocalStack container with S3 enabled and returns its
// endpoint.
func startLocalStack(t *testing.T) string {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "localstack/localstack",
		Tag:        "3",
		Env: []string{
			"SERVICES=s3",
			"DEFAULT_REGION=" + testRegion,
		},
		ExposedPorts: []string{localstackPort},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			fmt.Fprintf(os.Stderr, "Could not purge resource: %s\n", err)
		}
	})
	require.NoError(t, resource.Expire(120))

	endpoint := "http://" + resource.GetHostPort(localstackPort)

	err = pool.Retry(func() error {
		resp, err := http.Get(endpoint + "/_localstack/health")
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return nil
	})
	require.NoError(t, err)

	return endpoint
}

func TestAWSStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping localstack test in short mode")
	}

	endpoint := startLocalStack(t)

	store, err := NewAWSStore(context.Background(), zap.NewNop(), Config{
		Region:    testRegion,
		Bucket:    "hub-test",
		Endpoint:  endpoint,
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)
	require.NoError(t, store.CreateBucket(context.Background()))

	tests.RunStoreTests(t, store, func() {})
}
