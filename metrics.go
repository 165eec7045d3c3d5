// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package hotplug

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for plugin lifecycle transitions, aggregated across managers.
var (
	registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotplug_registrations_total",
		Help: "Total plugin registrations by outcome",
	}, []string{"outcome"})

	loadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotplug_loads_total",
		Help: "Total plugin load transitions, cascaded loads included",
	})

	unloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotplug_unloads_total",
		Help: "Total plugin unload transitions, cascaded unloads included",
	})

	enablesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotplug_enables_total",
		Help: "Total plugin enable transitions",
	})

	disablesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotplug_disables_total",
		Help: "Total plugin disable transitions",
	})
)
