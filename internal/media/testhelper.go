package media

import "testing"

// TestStorage returns a Storage backed by an in-memory gofakes3 server.
// The server is torn down with the test.
func TestStorage(t testing.TB, bucket string) *Storage {
	t.Helper()

	storage, shutdown, err := NewMemoryStorage(bucket)
	if err != nil {
		t.Fatalf("start in-memory storage: %v", err)
	}
	t.Cleanup(shutdown)
	return storage
}
