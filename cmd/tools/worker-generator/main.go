// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"cuidly-workers/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name        string
	PackageName string
	TaskType    string
	Category    string
	Description string
	Dir         string
}

const headerTemplate = `// {{ .Dir }}/{{ .File }}
package {{ .PackageName }}
`

const configTemplate = `
import (
	"time"

	"cuidly-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)}
}
`

const modelsTemplate = `
type Input struct {
	NannyID  *int64 ` + "`json:\"nannyId\"`" + `
	FamilyID *int64 ` + "`json:\"familyId\"`" + `
}

type Output struct {
}
`

const validationTemplate = `
import "cuidly-workers/internal/common/validation"

var inputSchema = validation.MustCompile(` + "`" + `{
	"type": "object",
	"properties": {
		"nannyId":  {"type": ["integer", "null"]},
		"familyId": {"type": ["integer", "null"]}
	}
}` + "`" + `)
`

const handlerTemplate = `
import (
	"context"
	"time"

	"cuidly-workers/internal/common/camunda"
	"cuidly-workers/internal/common/errors"
	"cuidly-workers/internal/common/logger"
	"cuidly-workers/internal/common/observability"
	"cuidly-workers/internal/subscription"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "{{ .TaskType }}"

// Handler runs {{ .Name }}: {{ .Description }}
type Handler struct {
	config *Config
	runner *camunda.Runner
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		runner: camunda.NewRunner(TaskType, config.Timeout, inputSchema, obs, log),
		logger: log,
		now:    time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runner.Run(client, job, func(ctx context.Context, job entities.Job) (interface{}, error) {
		var input Input
		if err := camunda.Decode(job, &input); err != nil {
			return nil, err
		}
		return h.execute(ctx, &input)
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if _, err := subscription.LookupFromIDs(input.NannyID, input.FamilyID); err != nil {
		return nil, errors.NewInvalidLookupError(err)
	}
	return &Output{}, nil
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	"testing"
	"time"

	"cuidly-workers/internal/common/errors"
	"cuidly-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(&Config{Timeout: 5 * time.Second}, nil, logger.NewTestLogger(t))
}

func TestExecute_InvalidLookup(t *testing.T) {
	_, err := createTestHandler(t).Execute(context.Background(), &Input{})
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidLookup, stdErr.Code)
}

func TestInputSchema(t *testing.T) {
	h := createTestHandler(t)
	assert.NoError(t, h.runner.Validate(` + "`" + `{"familyId": 1}` + "`" + `))
	assert.Error(t, h.runner.Validate(` + "`" + `{"familyId": "one"}` + "`" + `))
}
`

var files = []struct {
	name   string
	body   string
	header bool
}{
	{"config.go", configTemplate, true},
	{"models.go", modelsTemplate, true},
	{"validation.go", validationTemplate, true},
	{"handler.go", handlerTemplate, true},
	{"handler_test.go", testTemplate, false},
}

func main() {
	taskType := flag.String("taskType", "", "Task type registered in the activity registry")
	regPath := flag.String("registry", registry.DefaultPath, "Path to registry file")
	outRoot := flag.String("out", "internal/workers", "Root directory for generated workers")
	force := flag.Bool("force", false, "Overwrite existing files")
	flag.Parse()

	if *taskType == "" {
		flag.Usage()
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*regPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading registry: %v\n", err)
		os.Exit(1)
	}
	activity, ok := reg.Find(*taskType)
	if !ok {
		fmt.Fprintf(os.Stderr, "Task type %s is not in %s; add it with registry-updater first\n", *taskType, *regPath)
		os.Exit(1)
	}

	data := newWorkerData(*activity, *outRoot)
	if err := generate(data, *force); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating worker: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated %s in %s\n", data.TaskType, data.Dir)
}

func newWorkerData(a registry.Activity, outRoot string) WorkerData {
	return WorkerData{
		Name:        a.DisplayName,
		PackageName: packageName(a.TaskType),
		TaskType:    a.TaskType,
		Category:    a.Category,
		Description: a.Description,
		Dir:         filepath.ToSlash(filepath.Join(outRoot, a.Category, a.TaskType)),
	}
}

// packageName turns a task type such as check-job-expiration into the
// package name checkjobexpiration.
func packageName(taskType string) string {
	return strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(taskType))
}

func generate(data WorkerData, force bool) error {
	if err := os.MkdirAll(data.Dir, 0o755); err != nil {
		return err
	}
	for _, f := range files {
		path := filepath.Join(data.Dir, f.name)
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists, use -force to overwrite", path)
		}

		src := f.body
		if f.header {
			src = headerTemplate + src
		}
		tmpl, err := template.New(f.name).Parse(src)
		if err != nil {
			return fmt.Errorf("parse %s template: %w", f.name, err)
		}

		out, err := os.Create(path)
		if err != nil {
			return err
		}
		err = tmpl.Execute(out, struct {
			WorkerData
			File string
		}{data, f.name})
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("render %s: %w", f.name, err)
		}
	}
	return nil
}
