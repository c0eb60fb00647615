// exposes a Store interface that is passed to API calls w/ param requirements
package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/roomcast/roomcast/internal/model"
)

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// display functions
	ListDisplays() ([]model.Display, error)
	GetDisplayByID(id int) (model.Display, error)
	GetDisplayByDeviceID(deviceID *string) (model.Display, error)
	CreateDisplay(hotelID int, areaID *int, name string, location *string, createdBy int) (model.Display, error)
	UpdateDisplay(id int, name, location *string, areaID *int) error
	SetDisplayFallbackContent(id int, contentID *int) error
	PairDisplay(id int) error
	AssignDeviceIDToDisplay(displayID int, deviceID *string) error
	DeleteDisplay(id int) error

	// alert functions
	CreateAlert(a model.Alert) (model.Alert, error)
	UpdateAlert(id int, isActive *bool, priority *int, endAt *time.Time) error
	ListAlerts(hotelID int) ([]model.Alert, error)
	ListActiveAlerts(displayID int, now time.Time) ([]model.Alert, error)

	// sync group functions
	CreateSyncGroup(hotelID int, name string, createdBy int) (model.SyncGroup, error)
	GetSyncGroupByID(groupID int) (model.SyncGroup, error)
	ListSyncGroups() ([]model.SyncGroup, error)
	DeleteSyncGroup(groupID int) error
	AddDisplayToSyncGroup(groupID, displayID int) error
	RemoveDisplayFromSyncGroup(groupID, displayID int) error
	SaveSyncGroupState(g model.SyncGroup) error
	GetActiveSyncMembership(displayID int) (*model.SyncGroup, error)

	// schedule functions
	ListSchedulesForDisplay(displayID int) ([]model.Schedule, error)

	// playlist functions
	ListPlaylistItemsForDisplay(displayID int) ([]model.PlaylistItem, error)

	// content functions
	GetContentByID(id int) (model.Content, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
// required so linter doesn't complain
var _ Store = (*pgStore)(nil)

func NewStore(db *sqlx.DB) Store {
	return &pgStore{db: db}
}

// user functions delegate to the package-level helpers so the JWT
// middleware can keep using db.GetUserByID directly.

func (s *pgStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	return CreateUser(email, hashedPassword, name)
}

func (s *pgStore) GetUserByEmail(email string) (*model.User, error) {
	return GetUserByEmail(email)
}

func (s *pgStore) GetUserByID(id int) (*model.User, error) {
	return GetUserByID(id)
}

func (s *pgStore) UpdateUserProfile(id int, email string, name *string) error {
	return UpdateUserProfile(id, email, name)
}
