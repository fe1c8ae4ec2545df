package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/langvote/internal/adapters/http/api"
	"github.com/okian/langvote/internal/domain/model"
	"github.com/okian/langvote/internal/domain/types"
	"github.com/okian/langvote/internal/domain/validation"
	"github.com/okian/langvote/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// Mock implementations for testing
type mockDependencies struct {
	submitted []model.SubmissionInput
	submitFn  func(in model.SubmissionInput) (model.Submission, bool, error)
	results   types.ResultsResponse
	resultErr error
}

func (m *mockDependencies) Submit(_ context.Context, in model.SubmissionInput) (model.Submission, bool, error) {
	m.submitted = append(m.submitted, in)
	if m.submitFn != nil {
		return m.submitFn(in)
	}
	return model.Submission{ID: "sub-1"}, false, nil
}

func (m *mockDependencies) Results(context.Context) (types.ResultsResponse, error) {
	return m.results, m.resultErr
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"backend": "memory"}}, opts...).
		Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) string {
	var body types.ErrorResponse
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body.Error
}

const validBody = `{"name":"Ada","email":"ada@example.com","language":"go","reason":"Concurrency that reads well."}`

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("Then the health endpoint reports ok", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, `{"status":"ok"}`)
		})

		Convey("Then the stats endpoint is accessible", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"backend":"memory"`)
		})

		Convey("Then the metrics endpoint serves the registry", func() {
			do(mux, http.MethodGet, "/healthz", "")
			w := do(mux, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "langvote_voting_http_requests_total")
		})

		Convey("Then routes live under the default base path", func() {
			So(do(mux, http.MethodGet, "/api/results", "").Code, ShouldEqual, http.StatusOK)
			So(do(mux, http.MethodGet, "/results", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a server with a custom base path", t, func() {
		mux := newMux(&mockDependencies{}, api.WithBasePath("/v1/vote"))

		Convey("Then the routes move with it", func() {
			So(do(mux, http.MethodGet, "/v1/vote/results", "").Code, ShouldEqual, http.StatusOK)
			So(do(mux, http.MethodPost, "/v1/vote/submissions", validBody).Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestSubmissionsHandler(t *testing.T) {
	Convey("Given a submissions handler", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When a new vote is posted", func() {
			w := do(mux, http.MethodPost, "/api/submissions", validBody)

			Convey("Then it returns the submitted message and id", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp types.SubmitResponse
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp, ShouldResemble, types.SubmitResponse{
					Success:      true,
					Message:      "Your vote has been submitted successfully!",
					SubmissionID: "sub-1",
				})
				So(deps.submitted, ShouldResemble, []model.SubmissionInput{{
					Name: "Ada", Email: "ada@example.com", Language: "go", Reason: "Concurrency that reads well.",
				}})
			})
		})

		Convey("When an existing vote is updated", func() {
			deps.submitFn = func(model.SubmissionInput) (model.Submission, bool, error) {
				return model.Submission{ID: "sub-9"}, true, nil
			}
			w := do(mux, http.MethodPost, "/api/submissions", validBody)

			Convey("Then it returns the updated message", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "Your vote has been updated successfully!")
				So(w.Body.String(), ShouldContainSubstring, `"submissionId":"sub-9"`)
			})
		})

		Convey("When the service reports missing fields", func() {
			deps.submitFn = func(model.SubmissionInput) (model.Submission, bool, error) {
				return model.Submission{}, false, validation.ErrMissingFields
			}
			w := do(mux, http.MethodPost, "/api/submissions", `{"name":"Ada"}`)

			Convey("Then it responds 400 with the required message", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w), ShouldEqual, "All fields are required")
			})
		})

		Convey("When the service reports a bad email", func() {
			deps.submitFn = func(model.SubmissionInput) (model.Submission, bool, error) {
				return model.Submission{}, false, fmt.Errorf("check: %w", validation.ErrInvalidEmail)
			}
			w := do(mux, http.MethodPost, "/api/submissions", validBody)

			Convey("Then it responds 400 with the email message", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w), ShouldEqual, "Invalid email format")
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/api/submissions", `{"name":`)

			Convey("Then it responds 400 without calling the service", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w), ShouldEqual, "Invalid request body")
				So(deps.submitted, ShouldBeEmpty)
			})
		})

		Convey("When a field has the wrong JSON type", func() {
			w := do(mux, http.MethodPost, "/api/submissions", `{"name":42}`)

			Convey("Then it responds 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the service fails unexpectedly", func() {
			deps.submitFn = func(model.SubmissionInput) (model.Submission, bool, error) {
				return model.Submission{}, false, errors.New("db down")
			}
			w := do(mux, http.MethodPost, "/api/submissions", validBody)

			Convey("Then it responds 500 with a generic message", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeError(w), ShouldEqual, "Internal server error")
			})
		})

		Convey("When the wrong verb is used", func() {
			w := do(mux, http.MethodGet, "/api/submissions", "")

			Convey("Then it responds 405", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(decodeError(w), ShouldEqual, "Method not allowed")
				So(w.Header().Get("Allow"), ShouldEqual, http.MethodPost)
			})
		})
	})

	Convey("Given a small body limit", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps, api.WithMaxBodyBytes(16))

		Convey("Then larger bodies are rejected", func() {
			w := do(mux, http.MethodPost, "/api/submissions", validBody)
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			So(deps.submitted, ShouldBeEmpty)
		})
	})
}

func TestResultsHandler(t *testing.T) {
	Convey("Given a results handler", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When there are no votes and the service returns nil collections", func() {
			w := do(mux, http.MethodGet, "/api/results", "")

			Convey("Then empty collections are encoded, never null", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, `{"languageCounts":{},"totalVotes":0,"allSubmissions":[]}`)
			})
		})

		Convey("When there are votes", func() {
			deps.results = types.ResultsResponse{
				LanguageCounts: map[string]int{"go": 1},
				TotalVotes:     1,
				AllSubmissions: []model.Submission{{
					ID: "1", Name: "Ada", Email: "ada@example.com", Language: "go",
					Reason: "Concurrency that reads well.", TimeSubmitted: "2024-01-01T10:00:00.000Z",
				}},
			}
			w := do(mux, http.MethodGet, "/api/results", "")

			Convey("Then the wire shape uses camelCase keys", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var raw map[string]json.RawMessage
				So(json.Unmarshal(w.Body.Bytes(), &raw), ShouldBeNil)
				So(raw, ShouldContainKey, "languageCounts")
				So(raw, ShouldContainKey, "totalVotes")
				So(raw, ShouldContainKey, "allSubmissions")
				So(string(raw["allSubmissions"]), ShouldContainSubstring, `"timeSubmitted":"2024-01-01T10:00:00.000Z"`)
			})
		})

		Convey("When the service fails", func() {
			deps.resultErr = errors.New("boom")
			w := do(mux, http.MethodGet, "/api/results", "")

			Convey("Then it responds 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeError(w), ShouldEqual, "Internal server error")
			})
		})

		Convey("When the wrong verb is used", func() {
			w := do(mux, http.MethodPost, "/api/results", validBody)

			Convey("Then it responds 405", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(decodeError(w), ShouldEqual, "Method not allowed")
			})
		})
	})
}

func TestChain(t *testing.T) {
	Convey("Given the middleware chain around a mux", t, func() {
		h := api.Chain(newMux(&mockDependencies{}), api.ChainOptions{
			AllowedOrigins: []string{"http://localhost:3000"},
		})

		Convey("When a browser sends a preflight request", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/submissions", http.NoBody)
			req.Header.Set("Origin", "http://localhost:3000")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then the origin is allowed", func() {
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "http://localhost:3000")
			})
		})

		Convey("When a regular request passes through", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/submissions", bytes.NewBufferString(validBody))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then the handler still answers", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestMethodNotAllowedLogging(t *testing.T) {
	Convey("Given debug logging into a buffer", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithWriter(&buf)), ShouldBeNil)
		So(logger.SetLevelString("debug"), ShouldBeNil)
		defer func() { _ = logger.Init() }()

		mux := newMux(&mockDependencies{})

		Convey("Then a wrong verb is logged with the operation and kind", func() {
			w := do(mux, http.MethodPost, "/api/results", validBody)
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(buf.String(), ShouldContainSubstring, "api.get_results: method not allowed")
			So(buf.String(), ShouldContainSubstring, "method=POST")
		})
	})
}

func TestWrapHelpers(t *testing.T) {
	Convey("Given the error helpers", t, func() {
		cause := errors.New("cause")

		err := api.WrapKind("op", api.ErrBadRequest, cause)
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)

		So(errors.Is(api.NewKind("op", api.ErrInternal), api.ErrInternal), ShouldBeTrue)
	})
}
