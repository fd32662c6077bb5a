package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/nilq/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDDBClient is an in-memory DynamoDB table keyed by (run_uri, version).
type mockDDBClient struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{items: make(map[string]map[string]types.AttributeValue)}
}

func attrS(item map[string]types.AttributeValue, k string) string {
	return item[k].(*types.AttributeValueMemberS).Value
}

func attrN(item map[string]types.AttributeValue, k string) uint64 {
	v, _ := strconv.ParseUint(item[k].(*types.AttributeValueMemberN).Value, 10, 64)
	return v
}

func (m *mockDDBClient) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%s:%d", attrS(in.Item, "run_uri"), attrN(in.Item, "version"))
	if aws.ToString(in.ConditionExpression) == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}
	m.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	uri := in.ExpressionAttributeValues[":uri"].(*types.AttributeValueMemberS).Value
	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if attrS(item, "run_uri") == uri {
			items = append(items, item)
		}
	}
	slices.SortFunc(items, func(a, b map[string]types.AttributeValue) int {
		return int(attrN(b, "version")) - int(attrN(a, "version"))
	})
	if in.Limit != nil && int(*in.Limit) < len(items) {
		items = items[:*in.Limit]
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func newTestDDBCommitStore(ddb *mockDDBClient, baseURI string) *DDBCommitStore {
	return NewDDBCommitStore(NewStore(&MockS3Client{}, "test-bucket", "test/"), ddb, "nilq-checkpoints", baseURI)
}

func readPointer(t *testing.T, store blobstore.BlobStore, name string) string {
	t.Helper()
	data, err := blobstore.ReadAll(context.Background(), store, name)
	require.NoError(t, err)
	return string(data)
}

func TestDDBCommitStore_Commits(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test")

	for c := 1; c <= 12; c++ {
		require.NoError(t, store.Put(ctx, "run-1/LATEST", []byte(fmt.Sprintf("run-1/class-%04d.ckpt", c))))
	}
	assert.Equal(t, "run-1/class-0012.ckpt", readPointer(t, store, "run-1/LATEST"))

	blob, err := store.Open(ctx, "run-1/LATEST")
	require.NoError(t, err)
	buf := make([]byte, 64)
	n, err := blob.ReadAt(ctx, buf, 6)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "class-0012.ckpt", string(buf[:n]))
	require.NoError(t, blob.Close())
}

func TestDDBCommitStore_NotFoundBeforeCommit(t *testing.T) {
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test")
	_, err := store.Open(context.Background(), "run-1/LATEST")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestDDBCommitStore_IsolatedRuns(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	a := newTestDDBCommitStore(ddb, "s3://bucket-a/path")
	b := newTestDDBCommitStore(ddb, "s3://bucket-b/path")

	require.NoError(t, a.Put(ctx, "run-1/LATEST", []byte("A1")))
	require.NoError(t, a.Put(ctx, "run-2/LATEST", []byte("A2")))
	require.NoError(t, b.Put(ctx, "run-1/LATEST", []byte("B1")))

	assert.Equal(t, "A1", readPointer(t, a, "run-1/LATEST"))
	assert.Equal(t, "A2", readPointer(t, a, "run-2/LATEST"))
	assert.Equal(t, "B1", readPointer(t, b, "run-1/LATEST"))
}

func TestDDBCommitStore_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test")
	require.NoError(t, store.Put(ctx, "run-1/LATEST", []byte("first")))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			err := store.Put(ctx, "run-1/LATEST", []byte(fmt.Sprintf("writer-%d", id)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrConcurrentModification):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	assert.Positive(t, successes)
}

func TestDDBCommitStore_PointerNeedsPut(t *testing.T) {
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test")
	_, err := store.Create(context.Background(), "run-1/LATEST")
	assert.Error(t, err)
	assert.NoError(t, store.Delete(context.Background(), "run-1/LATEST"))
}
