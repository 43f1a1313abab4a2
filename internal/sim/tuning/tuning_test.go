package tuning

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaults_AreSane(t *testing.T) {
	d := Defaults()
	if d.TickRateHz != 60 {
		t.Fatalf("tick rate = %d, want 60", d.TickRateHz)
	}
	if d.Hits.Lethal != 3 {
		t.Fatalf("lethal hit count = %d, want 3", d.Hits.Lethal)
	}
	if d.Hits.WindowTicks != 10*d.TickRateHz {
		t.Fatalf("hit window = %d ticks, want ten seconds", d.Hits.WindowTicks)
	}
	if d.Physics.GravityFall <= d.Physics.GravityRise {
		t.Fatalf("fall gravity must exceed rise gravity")
	}
	if d.Pursuer.StandoffFloor >= d.Pursuer.StandoffBase {
		t.Fatalf("standoff floor must sit below the base")
	}
	for i, w := range d.Spawn.Weights {
		if w <= 0 {
			t.Fatalf("spawn weight %d must be positive", i)
		}
	}
}

func TestLoad_RepoConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("load configs/tuning.yaml: %v", err)
	}
	if !reflect.DeepEqual(cfg, Defaults()) {
		t.Fatalf("shipped tuning.yaml drifted from Defaults():\n got %+v\nwant %+v", cfg, Defaults())
	}
}

func TestLoad_MissingAndMalformed(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); !os.IsNotExist(err) {
		t.Fatalf("missing file should surface IsNotExist, got %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("tick_rate_hz: [nope"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatalf("malformed yaml must error")
	}
}
