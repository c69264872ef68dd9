package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/EstoreFactory109/SellerQI-sub007/api/middleware"
	"github.com/EstoreFactory109/SellerQI-sub007/api/responses"
	"github.com/EstoreFactory109/SellerQI-sub007/api/validators"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/snapshot"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
)

// SnapshotStager stores a raw marketplace snapshot for later collection.
type SnapshotStager interface {
	Stage(ctx context.Context, sellerID, country, region string, snap *snapshot.Snapshot, ttl time.Duration) error
}

type stageSnapshotRequest struct {
	Snapshot *snapshot.Snapshot `json:"snapshot" validate:"required"`
	TTLHours int                `json:"ttlHours" validate:"omitempty,min=1,max=168"`
}

type stageSnapshotResponse struct {
	Status   string    `json:"status"`
	StagedAt time.Time `json:"stagedAt"`
}

// StageSnapshot accepts a raw snapshot document from the ingestion side and
// stages it for the next recalculation.
func StageSnapshot(stager SnapshotStager, defaultTTL time.Duration, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := middleware.SellerKeyFromContext(r.Context())

		var req stageSnapshotRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ttl := defaultTTL
		if req.TTLHours > 0 {
			ttl = time.Duration(req.TTLHours) * time.Hour
		}

		err := stager.Stage(r.Context(), key.SellerID.String(), key.Country, key.Region, req.Snapshot.Normalize(), ttl)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, stageSnapshotResponse{
			Status:   "staged",
			StagedAt: time.Now().UTC(),
		})
	}
}
