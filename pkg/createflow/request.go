package createflow

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Request is the caller input for creating a volume. At most one source may
// be set.
type Request struct {
	VolumeID           uuid.UUID `json:"volume_id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	SizeGB             int       `json:"size"`
	VolumeTypeID       string    `json:"volume_type_id,omitempty"`
	SnapshotID         string    `json:"snapshot_id,omitempty"`
	ImageID            string    `json:"image_id,omitempty"`
	SourceVolumeID     string    `json:"source_volid,omitempty"`
	SourceReplicaID    string    `json:"source_replicaid,omitempty"`
	ConsistencyGroupID string    `json:"consistencygroup_id,omitempty"`
}

// extract validates req. A missing volume id is generated.
func extract(req Request) (Request, error) {
	if req.SizeGB <= 0 {
		return Request{}, errors.Join(ErrInvalidRequest, fmt.Errorf("size must be positive, got %d", req.SizeGB))
	}

	sources := 0
	for _, s := range []string{req.SnapshotID, req.ImageID, req.SourceVolumeID, req.SourceReplicaID} {
		if s != "" {
			sources++
		}
	}
	if sources > 1 {
		return Request{}, errors.Join(ErrInvalidRequest, errors.New("only one volume source may be set"))
	}

	if req.VolumeID == uuid.Nil {
		req.VolumeID = uuid.New()
	}
	return req, nil
}
