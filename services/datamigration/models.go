package datamigration

import "time"

// SystemData is the creation and modification metadata ARM attaches to a
// resource.
type SystemData struct {
	CreatedBy          *string    `json:"createdBy,omitempty"`
	CreatedByType      *string    `json:"createdByType,omitempty"`
	CreatedAt          *time.Time `json:"createdAt,omitempty"`
	LastModifiedBy     *string    `json:"lastModifiedBy,omitempty"`
	LastModifiedByType *string    `json:"lastModifiedByType,omitempty"`
	LastModifiedAt     *time.Time `json:"lastModifiedAt,omitempty"`
}

// SQLMigrationService is a Database Migration Service instance.
type SQLMigrationService struct {
	ID         *string                        `json:"id,omitempty"`
	Name       *string                        `json:"name,omitempty"`
	Type       *string                        `json:"type,omitempty"`
	Location   *string                        `json:"location,omitempty"`
	Tags       map[string]string              `json:"tags,omitempty"`
	SystemData *SystemData                    `json:"systemData,omitempty"`
	Properties *SQLMigrationServiceProperties `json:"properties,omitempty"`
}

// SQLMigrationServiceProperties holds the service state.
type SQLMigrationServiceProperties struct {
	ProvisioningState       *string `json:"provisioningState,omitempty"`
	IntegrationRuntimeState *string `json:"integrationRuntimeState,omitempty"`
}

// SQLMigrationServiceUpdate is the PATCH body of Update.
type SQLMigrationServiceUpdate struct {
	Tags map[string]string `json:"tags,omitempty"`
}

// SQLMigrationListResult is one page of services.
type SQLMigrationListResult struct {
	Value    []SQLMigrationService `json:"value,omitempty"`
	NextLink *string               `json:"nextLink,omitempty"`
}

// AuthenticationKeys are the self-hosted integration runtime keys.
type AuthenticationKeys struct {
	AuthKey1 *string `json:"authKey1,omitempty"`
	AuthKey2 *string `json:"authKey2,omitempty"`
}

// RegenAuthKeys names the key to regenerate and returns the new pair.
type RegenAuthKeys struct {
	KeyName  *string `json:"keyName,omitempty"`
	AuthKey1 *string `json:"authKey1,omitempty"`
	AuthKey2 *string `json:"authKey2,omitempty"`
}

// DeleteNode identifies an integration runtime node to remove.
type DeleteNode struct {
	NodeName               *string `json:"nodeName,omitempty"`
	IntegrationRuntimeName *string `json:"integrationRuntimeName,omitempty"`
}

// IntegrationRuntimeMonitoringData reports the runtime nodes of a service.
type IntegrationRuntimeMonitoringData struct {
	Name  *string              `json:"name,omitempty"`
	Nodes []NodeMonitoringData `json:"nodes,omitempty"`
}

// NodeMonitoringData is the load of one integration runtime node.
type NodeMonitoringData struct {
	AdditionalProperties  map[string]any `json:"additionalProperties,omitempty"`
	NodeName              *string        `json:"nodeName,omitempty"`
	AvailableMemoryInMB   *int32         `json:"availableMemoryInMB,omitempty"`
	CPUUtilization        *int32         `json:"cpuUtilization,omitempty"`
	ConcurrentJobsLimit   *int32         `json:"concurrentJobsLimit,omitempty"`
	ConcurrentJobsRunning *int32         `json:"concurrentJobsRunning,omitempty"`
	MaxConcurrentJobs     *int32         `json:"maxConcurrentJobs,omitempty"`
	SentBytes             *float64       `json:"sentBytes,omitempty"`
	ReceivedBytes         *float64       `json:"receivedBytes,omitempty"`
}

// ErrorInfo is a service error attached to a migration.
type ErrorInfo struct {
	Code    *string `json:"code,omitempty"`
	Message *string `json:"message,omitempty"`
}

// DatabaseMigration is a migration attached to a service.
type DatabaseMigration struct {
	ID         *string                      `json:"id,omitempty"`
	Name       *string                      `json:"name,omitempty"`
	Type       *string                      `json:"type,omitempty"`
	SystemData *SystemData                  `json:"systemData,omitempty"`
	Properties *DatabaseMigrationProperties `json:"properties,omitempty"`
}

// DatabaseMigrationProperties is the state shared by every migration kind.
type DatabaseMigrationProperties struct {
	Kind                   *string    `json:"kind,omitempty"`
	Scope                  *string    `json:"scope,omitempty"`
	ProvisioningState      *string    `json:"provisioningState,omitempty"`
	MigrationStatus        *string    `json:"migrationStatus,omitempty"`
	StartedOn              *time.Time `json:"startedOn,omitempty"`
	EndedOn                *time.Time `json:"endedOn,omitempty"`
	SourceDatabaseName     *string    `json:"sourceDatabaseName,omitempty"`
	MigrationService       *string    `json:"migrationService,omitempty"`
	MigrationOperationID   *string    `json:"migrationOperationId,omitempty"`
	MigrationFailureError  *ErrorInfo `json:"migrationFailureError,omitempty"`
	ProvisioningError      *string    `json:"provisioningError,omitempty"`

	TargetDatabaseCollation *string `json:"targetDatabaseCollation,omitempty"`
}

// DatabaseMigrationListResult is one page of migrations.
type DatabaseMigrationListResult struct {
	Value    []DatabaseMigration `json:"value,omitempty"`
	NextLink *string             `json:"nextLink,omitempty"`
}

// DatabaseMigrationSQLMI is a migration targeting a SQL managed instance.
type DatabaseMigrationSQLMI struct {
	ID         *string                           `json:"id,omitempty"`
	Name       *string                           `json:"name,omitempty"`
	Type       *string                           `json:"type,omitempty"`
	SystemData *SystemData                       `json:"systemData,omitempty"`
	Properties *DatabaseMigrationPropertiesSQLMI `json:"properties,omitempty"`
}

// DatabaseMigrationPropertiesSQLMI adds the managed instance specifics.
type DatabaseMigrationPropertiesSQLMI struct {
	DatabaseMigrationProperties
	MigrationStatusDetails *MigrationStatusDetails `json:"migrationStatusDetails,omitempty"`
	BackupConfiguration    *BackupConfiguration    `json:"backupConfiguration,omitempty"`
	OfflineConfiguration   *OfflineConfiguration   `json:"offlineConfiguration,omitempty"`
}

// MigrationStatusDetails is the progress of a running migration.
type MigrationStatusDetails struct {
	MigrationState         *string `json:"migrationState,omitempty"`
	CurrentRestoringFile   *string `json:"currentRestoringFilename,omitempty"`
	LastRestoredFilename   *string `json:"lastRestoredFilename,omitempty"`
	PendingLogBackupsCount *int32  `json:"pendingLogBackupsCount,omitempty"`
	IsFullBackupRestored   *bool   `json:"isFullBackupRestored,omitempty"`
}

// BackupConfiguration points at the source backups.
type BackupConfiguration struct {
	SourceLocation *SourceLocation `json:"sourceLocation,omitempty"`
	TargetLocation *TargetLocation `json:"targetLocation,omitempty"`
}

// SourceLocation is where the source backups live.
type SourceLocation struct {
	FileStorageType *string `json:"fileStorageType,omitempty"`
}

// TargetLocation is the storage account backups are copied to.
type TargetLocation struct {
	StorageAccountResourceID *string `json:"storageAccountResourceId,omitempty"`
	AccountKey               *string `json:"accountKey,omitempty"`
}

// OfflineConfiguration controls offline migrations.
type OfflineConfiguration struct {
	Offline        *bool   `json:"offline,omitempty"`
	LastBackupName *string `json:"lastBackupName,omitempty"`
}

// MigrationOperationInput identifies the migration operation to cancel or
// cut over.
type MigrationOperationInput struct {
	MigrationOperationID *string `json:"migrationOperationId,omitempty"`
}

// OperationListResult is one page of provider operations.
type OperationListResult struct {
	Value    []OperationsDefinition `json:"value,omitempty"`
	NextLink *string                `json:"nextLink,omitempty"`
}

// OperationsDefinition describes one provider operation.
type OperationsDefinition struct {
	Name         *string            `json:"name,omitempty"`
	IsDataAction *bool              `json:"isDataAction,omitempty"`
	Display      *OperationsDisplay `json:"display,omitempty"`
	Origin       *string            `json:"origin,omitempty"`
	Properties   map[string]any     `json:"properties,omitempty"`
}

// OperationsDisplay is the localized description of an operation.
type OperationsDisplay struct {
	Provider    *string `json:"provider,omitempty"`
	Resource    *string `json:"resource,omitempty"`
	Operation   *string `json:"operation,omitempty"`
	Description *string `json:"description,omitempty"`
}
