package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitPublish           = "rabbitmq_publish_run_completed"

	ActionJobStart    = "job_start"
	ActionJobFinished = "job_finished"

	ActionFetch          = "fetch"
	ActionDownload       = "download"
	ActionUpload         = "upload"
	ActionEnsureBucket   = "ensure_bucket"
	ActionEnsureDataset  = "ensure_dataset"
	ActionCreateTable    = "create_table"
	ActionAppendChunk    = "append_chunk"
	ActionReplaceZones   = "replace_zones"
	ActionNormalize      = "normalize"
	ActionWarehouseLoad  = "warehouse_load"
	ActionPartitionTable = "partition_table"

	ActionDatabaseTransactionFailed = "database_transaction_failed"
	ActionExternalServiceFailed     = "external_service_failed"
)
