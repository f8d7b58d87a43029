package volstate

// Volume status labels.
const (
	VolumeAttaching       = "attaching"
	VolumeAvailable       = "available"
	VolumeBackingUp       = "backing-up"
	VolumeCreating        = "creating"
	VolumeDeleting        = "deleting"
	VolumeDetaching       = "detaching"
	VolumeDownloading     = "downloading"
	VolumeError           = "error"
	VolumeErrorAttaching  = "error_attaching"
	VolumeErrorDeleting   = "error_deleting"
	VolumeErrorDetaching  = "error_detaching"
	VolumeErrorExtending  = "error_extending"
	VolumeErrorRestoring  = "error_restoring"
	VolumeExtending       = "extending"
	VolumeInUse           = "in-use"
	VolumeRestoring       = "restoring"
	VolumeRestoringBackup = "restoring-backup"
	VolumeRetyping        = "retyping"
	VolumeUploading       = "uploading"
)

// Attach status labels.
const (
	AttachAttached = "attached"
	AttachDetached = "detached"
)

// Migration sub-status labels.
const (
	MigrationCompleting = "completing"
	MigrationError      = "error"
	// MigrationNone means no migration is in progress.
	MigrationNone      = ""
	MigrationMigrating = "migrating"
	MigrationStarting  = "starting"
	// MigrationTarget is stored annotated with the source volume id,
	// see MigrationTargetFor.
	MigrationTarget = "target"
)

// Create-volume micro-state labels, in pipeline order.
const (
	MicroStateExtractRequest = "extract_request"
	MicroStateEntryCreate    = "entry_create"
	MicroStateQuotaReserve   = "quota_reserve"
	MicroStateQuotaCommit    = "quota_commit"
	MicroStateVolumeCast     = "volume_cast"
	MicroStateDeleted        = "deleted"
)

// MigrationTargetFor returns the annotated "target:<id>" value a migrated copy
// starts in.
func MigrationTargetFor(volumeID string) string {
	return NewState(MigrationTarget, volumeID).String()
}
