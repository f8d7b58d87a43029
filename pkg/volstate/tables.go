package volstate

var volumeStates = []string{
	VolumeAttaching,
	VolumeAvailable,
	VolumeBackingUp,
	VolumeCreating,
	VolumeDeleting,
	VolumeDetaching,
	VolumeDownloading,
	VolumeError,
	VolumeErrorAttaching,
	VolumeErrorDeleting,
	VolumeErrorDetaching,
	VolumeErrorExtending,
	VolumeErrorRestoring,
	VolumeExtending,
	VolumeInUse,
	VolumeRestoring,
	VolumeRestoringBackup,
	VolumeRetyping,
	VolumeUploading,
}

// volumeRecoveryTransitions move a volume out of an error state without any
// cleanup. Whether that is always safe has not been verified, so they are kept
// apart and can be dropped with WithoutRecoveryTransitions.
var volumeRecoveryTransitions = fanIn(VolumeAvailable,
	VolumeErrorDeleting,
	VolumeErrorDetaching,
	VolumeErrorAttaching,
	VolumeErrorExtending,
	VolumeError,
)

func volumeTransitions() []Transition {
	trs := []Transition{
		// Attach and detach. A failed detach lands in error_detaching rather
		// than back in in-use.
		T(VolumeAttaching, VolumeInUse),
		T(VolumeAttaching, VolumeErrorAttaching),
		T(VolumeInUse, VolumeDetaching),
		T(VolumeDetaching, VolumeErrorDetaching),
		T(VolumeDetaching, VolumeAvailable),

		T(VolumeCreating, VolumeAvailable),
		T(VolumeCreating, VolumeDownloading),
		T(VolumeDownloading, VolumeAvailable),

		T(VolumeDeleting, VolumeAvailable),
		T(VolumeDeleting, VolumeErrorDeleting),

		T(VolumeExtending, VolumeErrorExtending),
		T(VolumeExtending, VolumeAvailable),

		// Restore from backup.
		T(VolumeAvailable, VolumeRestoringBackup),
		T(VolumeRestoringBackup, VolumeAvailable),
		T(VolumeRestoring, VolumeError),
		T(VolumeRestoring, VolumeAvailable),
		T(VolumeRestoring, VolumeErrorRestoring),

		// Retype.
		T(VolumeInUse, VolumeRetyping),
		T(VolumeRetyping, VolumeAvailable),
		T(VolumeRetyping, VolumeInUse),

		// Upload to image.
		T(VolumeUploading, VolumeAvailable),
		T(VolumeUploading, VolumeInUse),

		T(VolumeBackingUp, VolumeAvailable),
	}

	// Deletion only from available and the acceptable error states.
	trs = append(trs, fanIn(VolumeDeleting,
		VolumeAvailable,
		VolumeErrorExtending,
		VolumeErrorRestoring,
		VolumeError,
	)...)

	// Operations without a dedicated error state fall back to the generic one.
	trs = append(trs, fanIn(VolumeError,
		VolumeCreating,
		VolumeRestoring,
		VolumeRetyping,
		VolumeDownloading,
	)...)

	trs = append(trs, volumeRecoveryTransitions...)

	// Operations that may only start from available.
	trs = append(trs, fanOut(VolumeAvailable,
		VolumeExtending,
		VolumeRestoring,
		VolumeRetyping,
		VolumeBackingUp,
		VolumeAttaching,
	)...)

	return trs
}

var attachStates = []string{
	AttachAttached,
	AttachDetached,
}

var attachTransitions = []Transition{
	T(AttachAttached, AttachDetached),
	T(AttachDetached, AttachAttached),
}

var migrationStates = []string{
	MigrationCompleting,
	MigrationError,
	MigrationNone,
	MigrationMigrating,
	MigrationStarting,
	MigrationTarget,
}

var migrationTransitions = []Transition{
	T(MigrationNone, MigrationMigrating),
	T(MigrationMigrating, MigrationError),
	// Also taken when the migrating process is killed before it progresses.
	T(MigrationMigrating, MigrationNone),
	T(MigrationMigrating, MigrationStarting),
}

var microStates = []string{
	MicroStateExtractRequest,
	MicroStateEntryCreate,
	MicroStateQuotaReserve,
	MicroStateQuotaCommit,
	MicroStateVolumeCast,
	MicroStateDeleted,
}

// Only two edges of the create pipeline are enforced. The other micro-states
// are declared for steps that do not record transitions yet.
var microStateTransitions = []Transition{
	T(MicroStateEntryCreate, MicroStateQuotaCommit),
	T(MicroStateQuotaCommit, MicroStateVolumeCast),
}

// RecoveryTransitions returns the unverified "error -> available" volume edges.
func RecoveryTransitions() []Transition {
	return append([]Transition(nil), volumeRecoveryTransitions...)
}

func defaultTables() [domainCount]*Table {
	return [domainCount]*Table{
		DomainVolume:     mustTable(DomainVolume, volumeStates, volumeTransitions()),
		DomainAttach:     mustTable(DomainAttach, attachStates, attachTransitions),
		DomainMigration:  mustTable(DomainMigration, migrationStates, migrationTransitions),
		DomainMicroState: mustTable(DomainMicroState, microStates, microStateTransitions),
	}
}

func mustTable(domain Domain, states []string, transitions []Transition) *Table {
	t, err := newTable(domain, states, transitions)
	if err != nil {
		panic("volstate: invalid built-in table: " + err.Error())
	}
	return t
}

func fanIn(to string, froms ...string) []Transition {
	trs := make([]Transition, 0, len(froms))
	for _, from := range froms {
		trs = append(trs, T(from, to))
	}
	return trs
}

func fanOut(from string, tos ...string) []Transition {
	trs := make([]Transition, 0, len(tos))
	for _, to := range tos {
		trs = append(trs, T(from, to))
	}
	return trs
}
