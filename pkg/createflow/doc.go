// Package createflow runs the create-volume pipeline and records its progress
// in the micro_state domain.
//
// Steps run in order:
//
//	extract_request  validate and normalize the request
//	quota_reserve    reserve quota for the new volume
//	entry_create     register volume=creating and micro_state=entry_create
//	quota_commit     commit the reservation, micro_state -> quota_commit
//	volume_cast      hand the volume to the scheduler, micro_state -> volume_cast
//
// When a step fails, the steps that completed are reverted in reverse order.
// Reverting entry_create moves the volume to error and marks the micro-state
// deleted. The deleted edge is not part of the micro_state table, so that
// write goes through quiet validation and leaves a warning in the log.
//
// CapacityQuotas and LogScheduler are in-process collaborators for
// single-node deployments.
package createflow
