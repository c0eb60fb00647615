package endpoints

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/roomcast/roomcast/internal/db"
	"github.com/roomcast/roomcast/internal/http/api"
	"github.com/roomcast/roomcast/internal/http/api/admin/control/packets"
	"github.com/roomcast/roomcast/internal/model"
	syncpkg "github.com/roomcast/roomcast/internal/sync"
)

type SyncGroupController struct {
	store  db.Store
	coord  *syncpkg.Coordinator
	router *syncpkg.Router
}

func newSyncGroupController(store db.Store, coord *syncpkg.Coordinator, router *syncpkg.Router) *SyncGroupController {
	return &SyncGroupController{store: store, coord: coord, router: router}
}

// SyncGroupModule mounts all authenticated /sync endpoints.
func SyncGroupModule(store db.Store, coord *syncpkg.Coordinator, router *syncpkg.Router) api.Module {
	ctl := newSyncGroupController(store, coord, router)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/sync/groups", ctl.listGroups)
		c.POST("/sync/groups", ctl.createGroup)
		c.GET("/sync/groups/:id", ctl.getGroup)
		c.DELETE("/sync/groups/:id", ctl.deleteGroup)

		c.POST("/sync/groups/:id/members", ctl.addMember)
		c.DELETE("/sync/groups/:id/members/:displayId", ctl.removeMember)

		c.POST("/sync/groups/:id/command", ctl.applyCommand)
		c.POST("/sync/groups/:id/conductor", ctl.assignConductor)
	})
}

// GET /api/admin/sync/groups
func (s *SyncGroupController) listGroups(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	groups := s.coord.Snapshots()
	out := make([]packets.SyncGroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, packets.NewSyncGroupResponse(g))
	}
	return out, nil
}

// POST /api/admin/sync/groups
func (s *SyncGroupController) createGroup(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateSyncGroupRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	group, err := s.store.CreateSyncGroup(request.HotelID, request.Name, user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create sync group"}
	}
	s.coord.Register(group)
	return packets.NewSyncGroupResponse(group), nil
}

// GET /api/admin/sync/groups/:id
func (s *SyncGroupController) getGroup(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := groupID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	snap, err := s.coord.Snapshot(id)
	if err != nil {
		return nil, translateSyncError(err)
	}
	return packets.NewSyncGroupResponse(snap), nil
}

// DELETE /api/admin/sync/groups/:id
func (s *SyncGroupController) deleteGroup(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := groupID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := s.store.DeleteSyncGroup(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "sync group not found"}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete sync group"}
	}
	s.coord.Remove(id)
	return gin.H{"deleted": id}, nil
}

// POST /api/admin/sync/groups/:id/members
func (s *SyncGroupController) addMember(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := groupID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.ModifyGroupMembershipRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := s.store.AddDisplayToSyncGroup(id, request.DisplayID); err != nil {
		return nil, &api.APIError{Code: http.StatusConflict, Message: err.Error()}
	}
	return s.refreshGroup(id)
}

// DELETE /api/admin/sync/groups/:id/members/:displayId
func (s *SyncGroupController) removeMember(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := groupID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	displayID, err := strconv.Atoi(ctx.Param("displayId"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid display id"}
	}

	if err := s.store.RemoveDisplayFromSyncGroup(id, displayID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "display not in group"}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not remove member"}
	}
	return s.refreshGroup(id)
}

// POST /api/admin/sync/groups/:id/command
func (s *SyncGroupController) applyCommand(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := groupID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.GroupCommandRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	snap, err := s.router.Apply(syncpkg.Command{
		Type:      request.Type,
		GroupID:   id,
		ContentID: request.ContentID,
		SeekTo:    request.SeekTo,
		Timestamp: request.Timestamp,
	})
	if err != nil {
		return nil, translateSyncError(err)
	}
	return packets.NewSyncGroupResponse(snap), nil
}

// POST /api/admin/sync/groups/:id/conductor
func (s *SyncGroupController) assignConductor(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := groupID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.AssignConductorRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := s.coord.AssignConductor(id, request.DisplayID, request.SocketID, syncpkg.ReasonManual); err != nil {
		return nil, translateSyncError(err)
	}
	log.Info().Int("group_id", id).Int("display_id", request.DisplayID).Int("admin", user.ID).
		Msg("conductor manually assigned")
	return gin.H{"conductor_id": request.DisplayID}, nil
}

// refreshGroup reloads the group from the store into the coordinator so
// membership changes take effect, then returns the fresh snapshot.
func (s *SyncGroupController) refreshGroup(id int) (any, *api.APIError) {
	group, err := s.store.GetSyncGroupByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not reload group"}
	}
	s.coord.Register(group)
	snap, err := s.coord.Snapshot(id)
	if err != nil {
		return nil, translateSyncError(err)
	}
	return packets.NewSyncGroupResponse(snap), nil
}

func groupID(ctx *gin.Context) (int, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, &api.APIError{Code: http.StatusBadRequest, Message: "invalid group id"}
	}
	return id, nil
}

func translateSyncError(err error) *api.APIError {
	switch {
	case errors.Is(err, syncpkg.ErrGroupNotFound):
		return &api.APIError{Code: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, syncpkg.ErrDisplayNotInGroup):
		return &api.APIError{Code: http.StatusUnprocessableEntity, Message: err.Error()}
	case errors.Is(err, syncpkg.ErrInvalidTransition):
		return &api.APIError{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, syncpkg.ErrStaleCommand):
		return &api.APIError{Code: http.StatusConflict, Message: err.Error()}
	default:
		return &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
}
