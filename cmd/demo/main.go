package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/halcyon-systems/asynclog"
	"github.com/halcyon-systems/asynclog/taskgraph"
	"github.com/halcyon-systems/asynclog/workpool"
)

const configFile = "demo_config.toml"

var tomlContent = `
[asynclog]
  level = -4
  debug = true
  file_logging = true
  directory = "./demo_logs"
  name = "demo"
  extension = ".log"
  max_bytes = 262144
  show_timestamp = true
  heartbeat_level = 2
  heartbeat_interval_s = 30
`

func main() {
	fmt.Println("--- asynclog + workpool + taskgraph demo ---")

	if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write demo config: %v\n", err)
	}

	logger := asynclog.NewLogger()
	cfg, err := asynclog.NewConfigFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v, using defaults\n", err)
		cfg = asynclog.DefaultConfig()
	}
	if err := logger.ApplyConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Shutdown(5 * time.Second)

	if err := logger.SaveConfig(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save config: %v\n", err)
	}

	logger.Info("demo starting")
	logger.LogJSON(asynclog.LevelInfo, "demo bootstrapped", map[string]any{"config_file": configFile})

	pool, err := workpool.New(4)
	if err != nil {
		logger.Fatal("failed to build pool", err)
	}
	defer pool.Close()

	graph := taskgraph.New()

	var mu sync.Mutex
	results := make(map[uint32]int)

	makeTask := func(id uint32, label string, value int) *workpool.Task {
		t := workpool.NewTask()
		t.SetName(label)
		_ = t.Submit(func() int {
			logger.InfoTrace(1, "running task", label)
			time.Sleep(10 * time.Millisecond)
			mu.Lock()
			results[id] = value
			mu.Unlock()
			return value
		})
		return t
	}

	tasks := make([]*workpool.Task, 0, 6)
	for i := 0; i < 6; i++ {
		tasks = append(tasks, makeTask(uint32(i), fmt.Sprintf("stage-%d", i), i*i))
		graph.AddTask(uint32(i))
	}
	// stage-2 and stage-3 depend on stage-0 and stage-1 completing first.
	_ = graph.AddDependency(2, 0)
	_ = graph.AddDependency(3, 1)
	_ = graph.AddDependency(4, 2)
	_ = graph.AddDependency(4, 3)
	_ = graph.AddDependency(5, 4)

	order, err := graph.Sort()
	if err != nil {
		logger.Error("dependency graph has a cycle", err)
	} else {
		logger.Info("resolved task order", fmt.Sprint(order))
	}

	var futures []*workpool.Future
	for _, id := range order {
		t := tasks[id]
		futures = append(futures, t.TakeFuture())
		if err := pool.Submit(t); err != nil {
			logger.Error("submit failed", err)
		}
	}

	for _, f := range futures {
		f.Wait()
	}

	pool.WaitForCompletion()
	logger.Info("all tasks complete", fmt.Sprintf("queued=%d outstanding=%d", pool.QueuedCount(), pool.OutstandingCount()))

	mu.Lock()
	for i := 0; i < 6; i++ {
		logger.Info("task result", i, results[uint32(i)])
	}
	mu.Unlock()

	pool.Pause()
	logger.Info("pool paused")
	pool.Resume()

	if err := pool.Reset(2); err != nil {
		logger.Error("reset failed", err)
	}
	logger.Info("pool resized", pool.OutstandingCount())

	if err := logger.Flush(2 * time.Second); err != nil {
		logger.Error("flush timed out", err)
	}

	fmt.Println("demo finished, see ./demo_logs")
}
