// Package durable is a Scheduler backend that runs the cooperative run
// loop inside a Temporal workflow/activity pair instead of a bare
// goroutine, so a crashed worker process resumes the same graph's
// action-firing loop on another worker rather than losing it, the
// durable-execution counterpart to scheduler/cooperative. Grounded on
// runtime/agent/engine/temporal/engine.go's adapter shape (Options with
// an optional pre-built client.Client or client.Options, one worker per
// task queue, OTEL instrumentation wired through by default, auto-start
// unless disabled) using go.temporal.io/sdk, go.temporal.io/sdk/worker,
// and go.temporal.io/sdk/contrib/opentelemetry per SPEC_FULL.md §9.
package durable

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/flowgraph/core/action"
	"github.com/flowgraph/core/pad"
	"github.com/flowgraph/core/scheduler"
	"github.com/flowgraph/core/scheduler/cooperative"
	"github.com/flowgraph/core/telemetry"
)

const (
	workflowName = "flowgraph.scheduler.run"
	activityName = "flowgraph.scheduler.runLoop"
)

// Options configures a durable Scheduler.
type Options struct {
	// Client is an optional pre-configured Temporal client; if nil, one is
	// created lazily from ClientOptions.
	Client client.Client
	// ClientOptions configures the lazily-created client when Client is nil.
	ClientOptions *client.Options
	// TaskQueue is the queue the run-loop worker listens on. Required.
	TaskQueue string
	// WorkerOptions is forwarded to worker.New.
	WorkerOptions worker.Options
	// DisableTracing skips installing the OTEL tracing interceptor.
	DisableTracing bool

	Logger  telemetry.Logger
	Metrics telemetry.Metrics
}

// Scheduler implements scheduler.Scheduler by delegating local action
// bookkeeping to an in-process cooperative.Scheduler, but running that
// scheduler's blocking Run loop as a Temporal activity invoked from a
// workflow: if the worker process dies mid-run, Temporal retries the
// activity on another worker, which resumes firing from the actions
// still registered on this Scheduler's cooperative delegate.
type Scheduler struct {
	inner *cooperative.Scheduler

	client      client.Client
	closeClient bool
	taskQueue   string
	workerOpts  worker.Options

	logger  telemetry.Logger
	metrics telemetry.Metrics

	mu     sync.Mutex
	w      worker.Worker
	run    client.WorkflowRun
	cancel context.CancelFunc
}

// New constructs a durable Scheduler. It does not start the worker or
// workflow; call Run to do that.
func New(opts Options) (*Scheduler, error) {
	if opts.TaskQueue == "" {
		return nil, fmt.Errorf("durable scheduler: task queue is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}

	cli := opts.Client
	closeClient := false
	if cli == nil {
		if opts.ClientOptions == nil {
			return nil, fmt.Errorf("durable scheduler: client options are required when Client is nil")
		}
		clientOpts := *opts.ClientOptions
		if !opts.DisableTracing {
			interceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{})
			if err != nil {
				return nil, fmt.Errorf("durable scheduler: tracing interceptor: %w", err)
			}
			clientOpts.Interceptors = append(clientOpts.Interceptors, interceptor)
		}
		var err error
		cli, err = client.NewLazyClient(clientOpts)
		if err != nil {
			return nil, fmt.Errorf("durable scheduler: create client: %w", err)
		}
		closeClient = true
	}

	return &Scheduler{
		inner:       cooperative.New(),
		client:      cli,
		closeClient: closeClient,
		taskQueue:   opts.TaskQueue,
		workerOpts:  opts.WorkerOptions,
		logger:      logger,
		metrics:     metrics,
	}, nil
}

func (s *Scheduler) AddAction(a *action.Action) error { return s.inner.AddAction(a) }
func (s *Scheduler) RemoveAction(a *action.Action)    { s.inner.RemoveAction(a) }
func (s *Scheduler) ToggleActive(a *action.Action)    { s.inner.ToggleActive(a) }
func (s *Scheduler) UpdateValues(a *action.Action)    { s.inner.UpdateValues(a) }

func (s *Scheduler) PadPush(src *pad.Pad, buf *pad.Buffer) pad.FlowReturn {
	return s.inner.PadPush(src, buf)
}

// runLoopActivity is the Temporal activity body: it simply blocks on the
// delegate's Run until ctx is cancelled or the loop errors, so the
// activity's own heartbeat/retry machinery is what supplies durability.
func (s *Scheduler) runLoopActivity(ctx context.Context) error {
	return s.inner.Run(ctx)
}

// runWorkflow is the Temporal workflow: a thin shell that executes the
// run-loop activity with no retry limit, matching the intent that the
// action graph keeps running until the application deliberately cancels
// the workflow.
func runWorkflow(ctx workflow.Context, _ any) (any, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 0,
		HeartbeatTimeout:    30 * time.Second,
	}
	actx := workflow.WithActivityOptions(ctx, ao)
	var result any
	err := workflow.ExecuteActivity(actx, activityName).Get(actx, &result)
	return result, err
}

// Run starts (or resumes) the worker for this Scheduler's task queue,
// registers the workflow/activity pair, and executes the workflow,
// blocking until it completes or ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	w := worker.New(s.client, s.taskQueue, s.workerOpts)
	w.RegisterWorkflowWithOptions(runWorkflow, workflow.RegisterOptions{Name: workflowName})
	w.RegisterActivityWithOptions(s.runLoopActivity, activity.RegisterOptions{Name: activityName})
	s.w = w
	s.mu.Unlock()

	if err := w.Start(); err != nil {
		return fmt.Errorf("durable scheduler: start worker: %w", err)
	}
	defer w.Stop()

	run, err := s.client.ExecuteWorkflow(runCtx, client.StartWorkflowOptions{TaskQueue: s.taskQueue}, workflowName, nil)
	if err != nil {
		return fmt.Errorf("durable scheduler: start workflow: %w", err)
	}
	s.mu.Lock()
	s.run = run
	s.mu.Unlock()

	var result any
	return run.Get(runCtx, &result)
}

// Stop cancels the running workflow (if any) and stops the local
// cooperative delegate, draining its queued buffers the same way a
// plain cooperative.Scheduler.Stop would.
func (s *Scheduler) Stop() {
	s.inner.Stop()
	s.mu.Lock()
	cancel := s.cancel
	cli := s.client
	run := s.run
	s.mu.Unlock()
	if run != nil && cli != nil {
		_ = cli.CancelWorkflow(context.Background(), run.GetID(), run.GetRunID())
	}
	if cancel != nil {
		cancel()
	}
	if s.closeClient && s.client != nil {
		s.client.Close()
	}
}

var _ scheduler.Scheduler = (*Scheduler)(nil)
