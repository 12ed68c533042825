package handler

import (
	"errors"
	"net/http"

	"gameshelf-sync-api/internal/repository"
	"gameshelf-sync-api/internal/service"
	"gameshelf-sync-api/pkg/apierror"
	"gameshelf-sync-api/pkg/response"
)

// SyncHandler handles the admin sync endpoints. Runs execute synchronously
// in the request; the server's write timeout is sized for full library runs.
type SyncHandler struct {
	export    *service.ExportService
	reconcile *service.ReconcileService
	images    *service.ImageService
	storeSync *service.StoreSyncService
	games     repository.GameRepository

	interchangePath string
}

// NewSyncHandler creates a new sync handler. storeSync may be nil when no
// store API key is configured; the store route then reports 503.
func NewSyncHandler(
	export *service.ExportService,
	reconcile *service.ReconcileService,
	images *service.ImageService,
	storeSync *service.StoreSyncService,
	games repository.GameRepository,
	interchangePath string,
) *SyncHandler {
	return &SyncHandler{
		export:          export,
		reconcile:       reconcile,
		images:          images,
		storeSync:       storeSync,
		games:           games,
		interchangePath: interchangePath,
	}
}

// SyncVendor handles POST /api/v1/admin/sync/vendor. It exports the vendor
// cache to the interchange file and reconciles the result into the target
// store, the full two-stage pipeline in one call.
func (h *SyncHandler) SyncVendor(w http.ResponseWriter, r *http.Request) {
	counts, err := h.export.Export(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrSourceNotFound) {
			response.Error(w, apierror.NotFound("vendor cache database not found"))
			return
		}
		response.Error(w, apierror.InternalError("export failed: "+err.Error()))
		return
	}

	report, err := h.reconcile.ReconcileFile(r.Context(), h.interchangePath)
	if err != nil {
		response.Error(w, apierror.InternalError("reconcile failed: "+err.Error()))
		return
	}

	response.OK(w, map[string]interface{}{
		"platforms": counts,
		"report":    report,
	})
}

// SyncStore handles POST /api/v1/admin/sync/store.
func (h *SyncHandler) SyncStore(w http.ResponseWriter, r *http.Request) {
	if h.storeSync == nil {
		response.Error(w, apierror.ServiceUnavailable("store API is not configured"))
		return
	}

	report, err := h.storeSync.SyncStore(r.Context())
	if err != nil {
		response.Error(w, apierror.BadGateway("store sync failed: "+err.Error()))
		return
	}

	response.OK(w, report)
}

// SyncImages handles POST /api/v1/admin/sync/images.
func (h *SyncHandler) SyncImages(w http.ResponseWriter, r *http.Request) {
	report, err := h.images.RefreshImages(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrSourceNotFound) {
			response.Error(w, apierror.NotFound("vendor cache database not found"))
			return
		}
		response.Error(w, apierror.InternalError("image refresh failed: "+err.Error()))
		return
	}

	response.OK(w, report)
}

// Stats handles GET /api/v1/admin/stats.
func (h *SyncHandler) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.games.CountGames(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError("failed to count games"))
		return
	}

	response.OK(w, map[string]interface{}{
		"games": count,
	})
}
