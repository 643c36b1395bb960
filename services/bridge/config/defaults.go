package config

import "errors"

// ErrInvalidConfig signals a configuration that can not be used
var ErrInvalidConfig = errors.New("invalid config")

// Defaults applied by ApplyDefaults
const (
	DefaultName                      = "picqer-stats"
	DefaultBaseDomain                = "picqer.com"
	DefaultScheme                    = "https"
	DefaultQueryIntervalInSeconds    = 60
	DefaultBatchSetIntervalInSeconds = 300
	DefaultRequestTimeoutInSeconds   = 10
	DefaultPageSize                  = 100
	DefaultBatchesPath               = "picklists/batches"
	DefaultIcon                      = "mdi:asterisk-circle-outline"
)

// DefaultMetrics returns the built-in table of simple stats
func DefaultMetrics() []MetricConfig {
	return []MetricConfig{
		{Name: "Picqer Open Picklists", UniqueID: "picqer_open_picklists", Path: "stats/open-picklists", Unit: "orders"},
		{Name: "Picqer Open Orders", UniqueID: "picqer_open_orders", Path: "stats/open-orders", Unit: "orders"},
		{Name: "Picqer New Orders Today", UniqueID: "picqer_new_orders_today", Path: "stats/new-orders-today", Unit: "orders"},
		{Name: "Picqer New Orders This Week", UniqueID: "picqer_new_orders_this_week", Path: "stats/new-orders-this-week", Unit: "orders"},
		{Name: "Picqer Closed Picklists This Week", UniqueID: "picqer_closed_picklists_this_week", Path: "stats/closed-picklists-this-week", Unit: "orders"},
		{Name: "Picqer Total Orders", UniqueID: "picqer_total_orders", Path: "stats/total-orders", Unit: "orders", StateClass: "total_increasing"},
		{Name: "Picqer Backorders", UniqueID: "picqer_backorders", Path: "stats/backorders", Unit: "orders"},
		{Name: "Picqer Closed Picklists Today", UniqueID: "picqer_closed_picklists_today", Path: "stats/closed-picklists-today", Unit: "orders"},
		{Name: "Picqer New Customers This Week", UniqueID: "picqer_new_customers_this_week", Path: "stats/new-customers-this-week", Unit: "customers"},
		{Name: "Picqer Total Products", UniqueID: "picqer_total_products", Path: "stats/total-products", Unit: "products"},
		{Name: "Picqer Active Products", UniqueID: "picqer_active_products", Path: "stats/active-products", Unit: "products"},
		{Name: "Picqer Inactive Products", UniqueID: "picqer_inactive_products", Path: "stats/inactive-products", Unit: "products"},
	}
}
