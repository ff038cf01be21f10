package whispercpp_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"podscribe/internal/logging"
	"podscribe/internal/services"
	"podscribe/internal/services/whispercpp"
	"podscribe/internal/testsupport"
)

func TestTranscribeStreamsLinesAndJoinsResult(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteScript(t, cfg.Engine.Binary,
		`echo " Hello there."
echo " This is a test."
echo ""
echo "output_txt: saving output to 'out.txt'"
exit 0
`)

	svc := whispercpp.New(cfg, logging.NewNop())
	var streamed []string
	text, err := svc.Transcribe(context.Background(), "episode.wav", func(line string) {
		streamed = append(streamed, line)
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if want := "Hello there. This is a test."; text != want {
		t.Errorf("transcript = %q, want %q", text, want)
	}
	want := []string{"Hello there.", "This is a test.", "output_txt: saving output to 'out.txt'"}
	if !reflect.DeepEqual(streamed, want) {
		t.Errorf("streamed lines = %v, want %v", streamed, want)
	}
}

func TestTranscribeKeepsInteriorOutputMarker(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteScript(t, cfg.Engine.Binary,
		`echo " The phrase output_txt appears mid-speech."
echo " More text follows it."
exit 0
`)

	svc := whispercpp.New(cfg, logging.NewNop())
	text, err := svc.Transcribe(context.Background(), "episode.wav", nil)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if want := "The phrase output_txt appears mid-speech. More text follows it."; text != want {
		t.Errorf("transcript = %q, want %q", text, want)
	}
}

func TestTranscribeReportsEngineFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteScript(t, cfg.Engine.Binary,
		`echo " partial output"
exit 3
`)

	svc := whispercpp.New(cfg, logging.NewNop())
	_, err := svc.Transcribe(context.Background(), "episode.wav", nil)
	if err == nil {
		t.Fatal("expected error from non-zero engine exit")
	}
	if !errors.Is(err, services.ErrEngine) {
		t.Fatalf("expected engine marker, got %v", err)
	}
}

func TestEnsureModelDownloadsOnce(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("ggml-model-bytes"))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Engine.ModelURL = server.URL + "/ggml-base.en.bin"

	svc := whispercpp.New(cfg, logging.NewNop())
	if err := svc.EnsureModel(context.Background()); err != nil {
		t.Fatalf("EnsureModel: %v", err)
	}
	data, err := os.ReadFile(cfg.Engine.ModelPath)
	if err != nil {
		t.Fatalf("read downloaded model: %v", err)
	}
	if string(data) != "ggml-model-bytes" {
		t.Errorf("model content = %q", data)
	}

	if err := svc.EnsureModel(context.Background()); err != nil {
		t.Fatalf("EnsureModel (cached): %v", err)
	}
	if requests != 1 {
		t.Errorf("model downloaded %d times, want 1", requests)
	}
}

func TestEnsureModelRejectsMissingURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Engine.ModelURL = ""

	svc := whispercpp.New(cfg, logging.NewNop())
	err := svc.EnsureModel(context.Background())
	if !errors.Is(err, services.ErrEngine) {
		t.Fatalf("expected engine marker, got %v", err)
	}
}

func TestEnsureBinarySkipsWhenPresent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteScript(t, cfg.Engine.Binary, "exit 0\n")

	// No git or make on PATH needed when the binary already exists.
	svc := whispercpp.New(cfg, logging.NewNop())
	if err := svc.EnsureBinary(context.Background()); err != nil {
		t.Fatalf("EnsureBinary: %v", err)
	}
}

func TestEnsureBinaryBuildsFromCheckout(t *testing.T) {
	dir := t.TempDir()
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Engine.BuildDir, 0o755); err != nil {
		t.Fatalf("mkdir build dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Engine.BuildDir, "Makefile"), []byte("all:\n"), 0o644); err != nil {
		t.Fatalf("write Makefile: %v", err)
	}

	// A fake make that produces the expected binary.
	binDir := filepath.Join(dir, "bin")
	testsupport.WriteScript(t, filepath.Join(binDir, "make"),
		"mkdir -p $(dirname "+cfg.Engine.Binary+")\n"+
			"touch "+cfg.Engine.Binary+"\n"+
			"chmod +x "+cfg.Engine.Binary+"\n")
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	svc := whispercpp.New(cfg, logging.NewNop())
	if err := svc.EnsureBinary(context.Background()); err != nil {
		t.Fatalf("EnsureBinary: %v", err)
	}
	if _, err := os.Stat(cfg.Engine.Binary); err != nil {
		t.Fatalf("binary not produced: %v", err)
	}
}
