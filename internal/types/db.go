package types

// TableName represents a database table name
type TableName string

const (
	TableNameClients       TableName = "clients"
	TableNameProviders     TableName = "providers"
	TableNameDevices       TableName = "devices"
	TableNameSubscriptions TableName = "subscriptions"
	TableNameInvoices      TableName = "invoices"
)

// ReadableTables are the tables the read-only proxy may expose.
var ReadableTables = []TableName{
	TableNameClients,
	TableNameProviders,
	TableNameDevices,
	TableNameSubscriptions,
	TableNameInvoices,
}
