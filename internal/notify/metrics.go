// Package notify holds the side-channel observers of admin actions:
// Prometheus counters and the redis fan-out publisher.
package notify

import (
	"context"

	"github.com/gigboard/gigadmin/internal/metrics"
	"github.com/gigboard/gigadmin/internal/models"
)

// MetricsObserver counts completed admin actions.
type MetricsObserver struct{}

// NewMetricsObserver creates a MetricsObserver.
func NewMetricsObserver() *MetricsObserver { return &MetricsObserver{} }

// Name labels the observer in logs and metrics.
func (m *MetricsObserver) Name() string { return "metrics" }

// Update increments gigadmin_admin_actions_total.
func (m *MetricsObserver) Update(_ context.Context, action models.Action, details models.AuditDetails) error {
	metrics.AdminActions.WithLabelValues(string(action), string(details.EntityType)).Inc()

	return nil
}
