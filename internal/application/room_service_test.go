package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

type roomRepoStub struct {
	createErr error
	created   []Room

	byName map[string]Room

	getRoom Room
	getErr  error

	list    []Room
	listErr error
}

func (r *roomRepoStub) CreateRoom(ctx context.Context, room Room) (Room, error) {
	if r.createErr != nil {
		return Room{}, r.createErr
	}
	r.created = append(r.created, room)
	return room, nil
}

func (r *roomRepoStub) GetRoom(ctx context.Context, id string) (Room, error) {
	if r.getErr != nil {
		return Room{}, r.getErr
	}
	return r.getRoom, nil
}

func (r *roomRepoStub) GetRoomByName(ctx context.Context, name string) (Room, error) {
	room, ok := r.byName[name]
	if !ok {
		return Room{}, persistence.ErrNotFound
	}
	return room, nil
}

func (r *roomRepoStub) ListRooms(ctx context.Context) ([]Room, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]Room, len(r.list))
	copy(out, r.list)
	return out, nil
}

func TestRoomService_ListRooms(t *testing.T) {
	t.Run("returns the catalog", func(t *testing.T) {
		repo := &roomRepoStub{list: []Room{
			{ID: "r1", Name: "BOARDROOM"},
			{ID: "r2", Name: "ROOM 1"},
		}}
		svc := NewRoomService(repo, nil, nil)

		rooms, err := svc.ListRooms(context.Background())
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(rooms) != 2 {
			t.Fatalf("expected 2 rooms, got %d", len(rooms))
		}
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		repo := &roomRepoStub{listErr: errors.New("disk gone")}
		svc := NewRoomService(repo, nil, nil)

		if _, err := svc.ListRooms(context.Background()); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestRoomService_GetRoom(t *testing.T) {
	t.Run("maps missing rooms to not found", func(t *testing.T) {
		repo := &roomRepoStub{getErr: persistence.ErrNotFound}
		svc := NewRoomService(repo, nil, nil)

		_, err := svc.GetRoom(context.Background(), "missing")

		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRoomService_SeedDefaultRooms(t *testing.T) {
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	t.Run("creates only the missing rooms", func(t *testing.T) {
		repo := &roomRepoStub{byName: map[string]Room{
			"ROOM 1": {ID: "r1", Name: "ROOM 1"},
		}}
		seq := 0
		svc := NewRoomService(repo, func() string { seq++; return "seeded" }, func() time.Time { return now })

		if err := svc.SeedDefaultRooms(context.Background(), []string{"ROOM 1", "BOARDROOM", "  ", ""}); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(repo.created) != 1 || repo.created[0].Name != "BOARDROOM" {
			t.Fatalf("expected only BOARDROOM to be created, got %v", repo.created)
		}
		if !repo.created[0].CreatedAt.Equal(now) {
			t.Fatalf("expected seed timestamp %v, got %v", now, repo.created[0].CreatedAt)
		}
	})

	t.Run("tolerates a concurrent seeder", func(t *testing.T) {
		repo := &roomRepoStub{createErr: persistence.ErrDuplicate}
		svc := NewRoomService(repo, nil, nil)

		if err := svc.SeedDefaultRooms(context.Background(), []string{"ROOM 1"}); err != nil {
			t.Fatalf("expected duplicate insert to be tolerated, got %v", err)
		}
	})
}
