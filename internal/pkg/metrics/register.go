package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

// register 由各指标文件的 init() 调用，先登记再统一注册
func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister 把登记的指标注册到默认 registry，只执行一次
func MustRegister() {
	once.Do(func() {
		if len(collectors) > 0 {
			prometheus.MustRegister(collectors...)
		}
	})
}

func norm(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "unknown"
	}
	return s
}
