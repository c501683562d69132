package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/sportlink/swipedeck/internal/adapters/backend"
	engine "github.com/sportlink/swipedeck/internal/app"
	"github.com/sportlink/swipedeck/internal/domain/gesture"
	"github.com/sportlink/swipedeck/internal/domain/model"
	"github.com/sportlink/swipedeck/internal/domain/quota"
)

// mockDeps implements Dependencies and StatsProvider for handler tests.
type mockDeps struct {
	snapshot     gesture.Snapshot
	swipeOK      bool
	swipedDir    model.Direction
	deck         engine.DeckState
	applied      string
	setFilterArg string
	refreshed    int
	quotaState   quota.State
	refreshErr   error
	contact      model.ContactInfo
	contactErr   error
	contactID    string
	matches      []model.Match
	matchesErr   error
	dismissed    bool
}

func (m *mockDeps) PointerDown(_ context.Context, x float64) gesture.Snapshot {
	m.snapshot.Phase = gesture.PhaseDragging
	m.snapshot.DeltaX = x
	return m.snapshot
}

func (m *mockDeps) PointerMove(_ context.Context, x float64) gesture.Snapshot {
	m.snapshot.DeltaX = x
	return m.snapshot
}

func (m *mockDeps) PointerUp(_ context.Context) gesture.Snapshot {
	m.snapshot.Phase = gesture.PhaseIdle
	return m.snapshot
}

func (m *mockDeps) SwipeHead(_ context.Context, dir model.Direction) bool {
	m.swipedDir = dir
	return m.swipeOK
}

func (m *mockDeps) DeckState(_ context.Context) engine.DeckState { return m.deck }

func (m *mockDeps) SetFilter(_ context.Context, f string) string {
	m.setFilterArg = f
	return m.applied
}

func (m *mockDeps) Refresh(_ context.Context) { m.refreshed++ }

func (m *mockDeps) Quota(_ context.Context) quota.State { return m.quotaState }

func (m *mockDeps) RefreshQuota(_ context.Context) error { return m.refreshErr }

func (m *mockDeps) RevealContact(_ context.Context, userID string) (model.ContactInfo, error) {
	m.contactID = userID
	return m.contact, m.contactErr
}

func (m *mockDeps) Matches(_ context.Context) ([]model.Match, error) {
	return m.matches, m.matchesErr
}

func (m *mockDeps) DismissModal(_ context.Context) bool { return m.dismissed }

func (m *mockDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"deck_size": 4}
}

func newTestMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(deps, deps).Register(context.Background(), mux)
	return mux
}

func doJSON(mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestDeckRoutes(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{
			deck: engine.DeckState{
				Cards:      []model.Card{{ID: "u1", Name: "Dana"}},
				Filter:     engine.FilterAll,
				ViewerType: model.ProfileAthlete,
			},
			applied: engine.FilterAll,
		}
		mux := newTestMux(deps)

		Convey("When GET /deck is requested", func() {
			rec := doJSON(mux, http.MethodGet, "/deck", nil)

			Convey("Then the deck state is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var ds engine.DeckState
				So(json.Unmarshal(rec.Body.Bytes(), &ds), ShouldBeNil)
				So(ds.Cards, ShouldHaveLength, 1)
				So(ds.Cards[0].ID, ShouldEqual, "u1")
				So(ds.Filter, ShouldEqual, engine.FilterAll)
			})
		})

		Convey("When /deck is requested with the wrong method", func() {
			rec := doJSON(mux, http.MethodPost, "/deck", nil)

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When POST /deck/filter carries a profile type", func() {
			deps.applied = "athlete"
			rec := doJSON(mux, http.MethodPost, "/deck/filter", map[string]string{"profile_type": "athlete"})

			Convey("Then the applied filter is reported", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp filterResponse
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Applied, ShouldEqual, "athlete")
				So(deps.setFilterArg, ShouldEqual, "athlete")
			})
		})

		Convey("When POST /deck/filter carries malformed JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/deck/filter", bytes.NewBufferString("{"))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then a validation error is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				var resp errorResponse
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Code, ShouldEqual, "validation_error")
			})
		})

		Convey("When POST /deck/refresh is requested", func() {
			rec := doJSON(mux, http.MethodPost, "/deck/refresh", nil)

			Convey("Then the deck is refreshed and returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.refreshed, ShouldEqual, 1)
			})
		})
	})
}

func TestPointerRoute(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("When a down event is posted", func() {
			rec := doJSON(mux, http.MethodPost, "/pointer", pointerRequest{Action: "down", X: 12})

			Convey("Then the gesture snapshot is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var snap gesture.Snapshot
				So(json.Unmarshal(rec.Body.Bytes(), &snap), ShouldBeNil)
				So(snap.Phase, ShouldEqual, gesture.PhaseDragging)
				So(snap.DeltaX, ShouldEqual, 12)
			})
		})

		Convey("When an up event is posted", func() {
			rec := doJSON(mux, http.MethodPost, "/pointer", pointerRequest{Action: "up"})

			Convey("Then the idle snapshot is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var snap gesture.Snapshot
				So(json.Unmarshal(rec.Body.Bytes(), &snap), ShouldBeNil)
				So(snap.Phase, ShouldEqual, gesture.PhaseIdle)
			})
		})

		Convey("When the action is unknown", func() {
			rec := doJSON(mux, http.MethodPost, "/pointer", pointerRequest{Action: "hover"})

			Convey("Then a validation error is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the method is wrong", func() {
			rec := doJSON(mux, http.MethodGet, "/pointer", nil)

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestSwipeRoute(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{swipeOK: true}
		mux := newTestMux(deps)

		Convey("When a like swipe is posted", func() {
			rec := doJSON(mux, http.MethodPost, "/swipe", swipeRequest{Direction: "like"})

			Convey("Then the decision is accepted", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(deps.swipedDir, ShouldEqual, model.DirectionLike)
				var ack swipeAck
				So(json.Unmarshal(rec.Body.Bytes(), &ack), ShouldBeNil)
				So(ack.Status, ShouldEqual, "accepted")
			})
		})

		Convey("When the direction is invalid", func() {
			rec := doJSON(mux, http.MethodPost, "/swipe", swipeRequest{Direction: "up"})

			Convey("Then a validation error is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the deck has no head card", func() {
			deps.swipeOK = false
			rec := doJSON(mux, http.MethodPost, "/swipe", swipeRequest{Direction: "dislike"})

			Convey("Then a conflict is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusConflict)
				var resp errorResponse
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Code, ShouldEqual, "no_head_card")
			})
		})
	})
}

func TestQuotaRoute(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{
			quotaState: quota.State{Premium: false, Remaining: 7, DailyLimit: 20},
		}
		mux := newTestMux(deps)

		Convey("When GET /quota succeeds", func() {
			rec := doJSON(mux, http.MethodGet, "/quota", nil)

			Convey("Then a fresh snapshot is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					quota.State
					Stale bool `json:"stale"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Remaining, ShouldEqual, 7)
				So(resp.Stale, ShouldBeFalse)
			})
		})

		Convey("When the backend refresh fails", func() {
			deps.refreshErr = backend.ErrNetwork
			rec := doJSON(mux, http.MethodGet, "/quota", nil)

			Convey("Then the last known state is served as stale", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					quota.State
					Stale bool `json:"stale"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Remaining, ShouldEqual, 7)
				So(resp.Stale, ShouldBeTrue)
			})
		})
	})
}

func TestContactRoute(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{
			contact: model.ContactInfo{Name: "Dana", Email: "dana@example.com"},
		}
		mux := newTestMux(deps)

		Convey("When the reveal is allowed", func() {
			rec := doJSON(mux, http.MethodGet, "/contact/u42", nil)

			Convey("Then the contact details are returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.contactID, ShouldEqual, "u42")
				var ci model.ContactInfo
				So(json.Unmarshal(rec.Body.Bytes(), &ci), ShouldBeNil)
				So(ci.Email, ShouldEqual, "dana@example.com")
			})
		})

		Convey("When the entitlement is denied", func() {
			deps.contactErr = &backend.Error{
				Kind:                 backend.ErrFeatureDenied,
				StatusCode:           http.StatusForbidden,
				Message:              "premium required",
				RequiresSubscription: true,
			}
			rec := doJSON(mux, http.MethodGet, "/contact/u42", nil)

			Convey("Then the subscription marker is surfaced", func() {
				So(rec.Code, ShouldEqual, http.StatusForbidden)
				var resp errorResponse
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Code, ShouldEqual, "feature_denied")
				So(resp.Message, ShouldEqual, "premium required")
				So(resp.RequiresSubscription, ShouldBeTrue)
			})
		})

		Convey("When the user is unknown", func() {
			deps.contactErr = backend.ErrNotFound
			rec := doJSON(mux, http.MethodGet, "/contact/u42", nil)

			Convey("Then a not found error is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the backend is unreachable", func() {
			deps.contactErr = backend.ErrNetwork
			rec := doJSON(mux, http.MethodGet, "/contact/u42", nil)

			Convey("Then a bad gateway is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadGateway)
			})
		})

		Convey("When the path has no user id", func() {
			rec := doJSON(mux, http.MethodGet, "/contact/", nil)

			Convey("Then a validation error is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestMatchesRoute(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("When there are no matches", func() {
			rec := doJSON(mux, http.MethodGet, "/matches", nil)

			Convey("Then an empty list is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp matchesResponse
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Matches, ShouldNotBeNil)
				So(resp.Matches, ShouldBeEmpty)
			})
		})

		Convey("When matches exist", func() {
			deps.matches = []model.Match{{MatchID: "m1", UserID: "u9", Name: "Sam"}}
			rec := doJSON(mux, http.MethodGet, "/matches", nil)

			Convey("Then they are listed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp matchesResponse
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Matches, ShouldHaveLength, 1)
				So(resp.Matches[0].MatchID, ShouldEqual, "m1")
			})
		})

		Convey("When the backend is unreachable", func() {
			deps.matchesErr = backend.ErrNetwork
			rec := doJSON(mux, http.MethodGet, "/matches", nil)

			Convey("Then a bad gateway is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadGateway)
			})
		})
	})
}

func TestModalRoute(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{dismissed: true}
		mux := newTestMux(deps)

		Convey("When the modal is dismissed", func() {
			rec := doJSON(mux, http.MethodPost, "/modal/dismiss", nil)

			Convey("Then the dismissal is acknowledged", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp dismissResponse
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Dismissed, ShouldBeTrue)
			})
		})

		Convey("When the method is wrong", func() {
			rec := doJSON(mux, http.MethodGet, "/modal/dismiss", nil)

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestStatsRoute(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("When GET /stats is requested", func() {
			rec := doJSON(mux, http.MethodGet, "/stats", nil)

			Convey("Then engine statistics are returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var stats map[string]interface{}
				So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
				So(stats["deck_size"], ShouldEqual, 4.0)
			})
		})
	})
}

func TestHealthRoute(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("When GET /healthz is requested", func() {
			rec := doJSON(mux, http.MethodGet, "/healthz", nil)

			Convey("Then the metrics exposition is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}
