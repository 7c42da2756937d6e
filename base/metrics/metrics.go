/*Package metrics wraps datadog-go to faciliate metric recording
Following are naming convention of metric:
- Internal process time: *.time
- External latency: *.latency
- Error: *.err
- Warning: *.warn
*/
package metrics

import (
	"github.com/spf13/viper"

	"github.com/czConstant/constant-pawn-protocol/base/env"
)

const (
	// TagValueNA is used for tags whose values are not available.
	TagValueNA = "n/a"
)

// Ender provides interface for BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpAvg(key string, val float64, tags ...string)
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)

	BumpTime(key string, tags ...string) Ender
}

// Option is functional parameter for metrics option
type Option func(*opt)

type opt struct {
	// withPodName means send metrics with pod name or not
	// default: true
	withPodName bool
}

// WithoutPodName disables the pod name tag. Pod name produces a lot of custom
// metrics, so turn it off when grouping by pod is unnecessary.
func WithoutPodName() Option {
	return func(o *opt) {
		o.withPodName = false
	}
}

// New creates a metric client with package name as prefix
func New(pkgName string, options ...Option) Service {
	o := opt{
		withPodName: true,
	}
	for _, option := range options {
		option(&o)
	}

	ddTags := []string{
		// using host removes all tags associated with host
		// ref: https://docs.datadoghq.com/developers/dogstatsd/data_types/#host-tag-key
		"host:",
		"env:" + viper.GetString("env_name"),
		"app:" + viper.GetString("app_name"),
	}
	if o.withPodName {
		ddTags = append(ddTags, "pod:"+env.PodName())
	}

	return &Metrics{
		pkgName: pkgName,
		datadog: DDMetrics{
			ddTags: ddTags,
		},
	}
}

// Metrics prefixes every bump with its package name and forwards to datadog
type Metrics struct {
	pkgName string
	datadog DDMetrics
}

// sampleRate can range from 0 to 1, and 1 means always send the metrics.
func (mt *Metrics) sampleRate() float64 {
	return 1.0
}

// BumpAvg bumps the average for the given key.
func (mt *Metrics) BumpAvg(key string, val float64, tags ...string) {
	mt.datadog.BumpAvg(mt.pkgName+`.`+key, val, mt.sampleRate(), tags...)
}

// BumpSum bumps the sum for the given key.
func (mt *Metrics) BumpSum(key string, val float64, tags ...string) {
	mt.datadog.BumpSum(mt.pkgName+`.`+key, val, mt.sampleRate(), tags...)
}

// BumpHistogram bumps the histogram for the given key.
func (mt *Metrics) BumpHistogram(key string, val float64, tags ...string) {
	mt.datadog.BumpHistogram(mt.pkgName+`.`+key, val, mt.sampleRate(), tags...)
}

// BumpTime is a special version of BumpHistogram which is specialized for
// timers. Calling it starts the timer, and it returns a value on which End()
// can be called to indicate finishing the timer:
//
//     defer s.BumpTime("my.function").End()
func (mt *Metrics) BumpTime(key string, tags ...string) Ender {
	return mt.datadog.BumpTime(mt.pkgName+`.`+key, mt.sampleRate(), tags...)
}
