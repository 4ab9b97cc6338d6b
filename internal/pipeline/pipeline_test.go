package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lmartin/pkgmill/internal/models"
)

func TestRunFailsOnMissingMetadata(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "README"), []byte("no packaging here\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := models.DefaultConfig()
	cfg.OutputDir = t.TempDir()

	job, err := Run(context.Background(), cfg, root)
	if err == nil {
		t.Fatal("expected classification failure")
	}

	var be *models.BuildError
	if !errors.As(err, &be) {
		t.Fatalf("expected a stage-tagged error, got %T: %v", err, err)
	}
	if be.Stage != models.StageClassify {
		t.Errorf("expected Classify stage, got %s", be.Stage)
	}
	if job.Status != models.StatusFailed {
		t.Errorf("expected failed status, got %s", job.Status)
	}
}

func TestBuilderForDispatch(t *testing.T) {
	cases := []models.PackagingKind{
		models.KindDebianNative,
		models.KindDebianPython,
		models.KindRPMSpec,
	}
	for _, kind := range cases {
		if got := builderFor(kind).Kind(); got != kind {
			t.Errorf("expected builder for %s, got %s", kind, got)
		}
	}
}
