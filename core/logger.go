package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// ProductionLogger implements Logger with leveled, structured output.
// Text format for local development, JSON for log aggregation (selected
// automatically under Kubernetes via Config).
type ProductionLogger struct {
	level  int
	format string
	name   string
	mu     sync.Mutex
	out    io.Writer
}

var levelNames = map[string]int{
	"DEBUG": 0,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

// NewProductionLogger creates a logger for the given component name from the
// logging configuration.
func NewProductionLogger(name string, cfg LoggingConfig) *ProductionLogger {
	level, ok := levelNames[strings.ToUpper(cfg.Level)]
	if !ok {
		level = levelNames["INFO"]
	}
	format := cfg.Format
	if format != "json" {
		format = "text"
	}
	return &ProductionLogger{
		level:  level,
		format: format,
		name:   name,
		out:    os.Stdout,
	}
}

// SetOutput redirects log output; used by tests.
func (l *ProductionLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

func (l *ProductionLogger) Debug(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

func (l *ProductionLogger) Info(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

func (l *ProductionLogger) Warn(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

func (l *ProductionLogger) Error(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

func (l *ProductionLogger) log(level, msg string, fields map[string]interface{}) {
	if levelNames[level] < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.format == "json" {
		entry := map[string]interface{}{
			"ts":        time.Now().UTC().Format(time.RFC3339Nano),
			"level":     level,
			"component": l.name,
			"msg":       msg,
		}
		for k, v := range fields {
			entry[k] = v
		}
		data, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(l.out, "{\"level\":\"ERROR\",\"msg\":\"log marshal failed: %v\"}\n", err)
			return
		}
		fmt.Fprintln(l.out, string(data))
		return
	}

	// Text format: sorted key=value pairs for stable output.
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s [%s] %s", time.Now().Format("15:04:05.000"), level, l.name, msg)
	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
	}
	fmt.Fprintln(l.out, b.String())
}
