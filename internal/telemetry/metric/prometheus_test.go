package metric

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/rosso/internal/storage/memory"
)

func TestRegistry_ObserveCommand(t *testing.T) {
	r := NewRegistry()
	r.ObserveCommand("get", StatusOK, time.Millisecond)
	r.ObserveCommand("get", StatusOK, time.Millisecond)
	r.ObserveCommand("incr", StatusError, time.Millisecond)

	if got := testutil.ToFloat64(r.CommandsTotal.WithLabelValues("get", StatusOK)); got != 2 {
		t.Errorf("get ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.CommandsTotal.WithLabelValues("incr", StatusError)); got != 1 {
		t.Errorf("incr error = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(r.CommandDuration); got != 2 {
		t.Errorf("histogram series = %d, want 2", got)
	}
}

func TestRegistry_Connections(t *testing.T) {
	r := NewRegistry()
	r.ConnOpened()
	r.ConnOpened()
	r.ConnClosed()
	r.ConnRejected()

	if got := testutil.ToFloat64(r.ConnectionsActive); got != 1 {
		t.Errorf("active = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.ConnectionsTotal); got != 2 {
		t.Errorf("total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.ConnectionsRejected); got != 1 {
		t.Errorf("rejected = %v, want 1", got)
	}
}

func TestRegistry_NilSafe(t *testing.T) {
	var r *Registry
	r.ObserveCommand("get", StatusOK, time.Millisecond)
	r.ObserveError("syntax")
	r.ConnOpened()
	r.ConnClosed()
	r.ConnRejected()
}

func TestKeyspaceCollector(t *testing.T) {
	ks := memory.New()
	ks.Set([]byte("a"), []byte("1"), 0)
	ks.Set([]byte("b"), []byte("2"), 0)
	ks.Get([]byte("a"))
	ks.Get([]byte("missing"))

	c := NewKeyspaceCollector(ks)
	expected := `
# HELP rosso_keyspace_hits_total Successful key lookups
# TYPE rosso_keyspace_hits_total counter
rosso_keyspace_hits_total 1
# HELP rosso_keyspace_keys Stored keys, including expired keys not yet reclaimed
# TYPE rosso_keyspace_keys gauge
rosso_keyspace_keys 2
# HELP rosso_keyspace_misses_total Lookups of missing keys
# TYPE rosso_keyspace_misses_total counter
rosso_keyspace_misses_total 1
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"rosso_keyspace_keys", "rosso_keyspace_hits_total", "rosso_keyspace_misses_total")
	if err != nil {
		t.Error(err)
	}
	if got := testutil.CollectAndCount(c, "rosso_keyspace_expired_keys_total"); got != 2 {
		t.Errorf("expired series = %d, want 2", got)
	}
}

type fixedStats memory.Stats

func (f fixedStats) Stats() memory.Stats { return memory.Stats(f) }

func TestKeyspaceCollector_ShardKeys(t *testing.T) {
	c := NewKeyspaceCollector(fixedStats{Keys: 5, Shards: 3, ShardKeys: []int{3, 0, 2}})
	expected := `
# HELP rosso_keyspace_shard_keys Stored keys per keyspace shard
# TYPE rosso_keyspace_shard_keys gauge
rosso_keyspace_shard_keys{shard="0"} 3
rosso_keyspace_shard_keys{shard="1"} 0
rosso_keyspace_shard_keys{shard="2"} 2
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "rosso_keyspace_shard_keys"); err != nil {
		t.Error(err)
	}

	ks := memory.New(memory.WithShards(4))
	for i := range 10 {
		ks.Set([]byte{byte('a' + i)}, []byte("v"), 0)
	}
	if got := testutil.CollectAndCount(NewKeyspaceCollector(ks), "rosso_keyspace_shard_keys"); got != 4 {
		t.Errorf("shard series = %d, want 4", got)
	}
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(NewKeyspaceCollector(memory.New()))
	r.ObserveCommand("set", StatusOK, time.Microsecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`rosso_commands_total{cmd="set",status="ok"} 1`,
		"rosso_keyspace_keys 0",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
