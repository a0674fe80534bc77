package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/hupe1980/llmcouncil/core"
	"github.com/hupe1980/llmcouncil/logging"
)

// MemoryReporter collects findings in memory. Safe for concurrent use.
type MemoryReporter struct {
	mu       sync.Mutex
	findings []core.Finding
}

// NewMemoryReporter creates an empty in-memory reporter.
func NewMemoryReporter() *MemoryReporter {
	return &MemoryReporter{}
}

// Report implements core.Reporter.
func (m *MemoryReporter) Report(f core.Finding) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findings = append(m.findings, f)
}

// Findings returns a copy of everything reported so far.
func (m *MemoryReporter) Findings() []core.Finding {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Finding, len(m.findings))
	copy(out, m.findings)
	return out
}

// ByKind returns the reported findings of one kind.
func (m *MemoryReporter) ByKind(kind core.FindingKind) []core.Finding {
	var out []core.Finding
	for _, f := range m.Findings() {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// LoggerReporter emits one structured log line per finding. Only kind,
// prompt and stage identifiers and the short detail are logged; prompt and
// response bodies never pass through here.
type LoggerReporter struct {
	logger logging.Logger
}

// NewLoggerReporter creates a reporter writing to logger.
func NewLoggerReporter(logger logging.Logger) *LoggerReporter {
	return &LoggerReporter{logger: logger}
}

// Report implements core.Reporter.
func (l *LoggerReporter) Report(f core.Finding) {
	l.logger.Info("finding", "kind", f.Kind, "prompt_id", f.PromptID, "stage_id", f.StageID, "detail", f.Detail)
}

// JSONLReporter appends findings as JSON lines to one file per prompt under
// a directory. Write failures are logged and swallowed; the audit sink must
// never fail a run.
type JSONLReporter struct {
	mu     sync.Mutex
	dir    string
	logger logging.Logger
	files  map[string]*os.File
}

// NewJSONLReporter creates a reporter writing under dir, creating it if
// needed.
func NewJSONLReporter(dir string, logger logging.Logger) (*JSONLReporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &JSONLReporter{
		dir:    dir,
		logger: logger,
		files:  map[string]*os.File{},
	}, nil
}

// Report implements core.Reporter.
func (j *JSONLReporter) Report(f core.Finding) {
	j.mu.Lock()
	defer j.mu.Unlock()

	name := f.PromptID
	if name == "" {
		name = "unscoped"
	}

	file, ok := j.files[name]
	if !ok {
		var err error
		file, err = os.OpenFile(filepath.Join(j.dir, name+".jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			j.logger.Error("open finding log", "prompt_id", name, "error", err)
			return
		}
		j.files[name] = file
	}

	line, err := json.Marshal(f)
	if err != nil {
		j.logger.Error("encode finding", "prompt_id", name, "error", err)
		return
	}
	if _, err := file.Write(append(line, '\n')); err != nil {
		j.logger.Error("write finding", "prompt_id", name, "error", err)
	}
}

// Close closes all open files.
func (j *JSONLReporter) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var first error
	for _, f := range j.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	j.files = map[string]*os.File{}
	return first
}

// MultiReporter fans every finding out to each wrapped reporter in order.
type MultiReporter []core.Reporter

// Report implements core.Reporter.
func (m MultiReporter) Report(f core.Finding) {
	for _, r := range m {
		r.Report(f)
	}
}

var (
	_ core.Reporter = (*MemoryReporter)(nil)
	_ core.Reporter = (*LoggerReporter)(nil)
	_ core.Reporter = (*JSONLReporter)(nil)
	_ core.Reporter = (MultiReporter)(nil)
)
