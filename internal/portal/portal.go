// Package portal is the client side of the LMS: typed services over the REST
// API plus the state the front end keeps between runs.
package portal

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/pkg/apiclient"
	"github.com/yigit/svitlms/internal/pkg/localstore"
)

// Config describes where the portal talks to.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:8080/api/v1.
	BaseURL string
	// Theme is used until the user picks one.
	Theme      string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Portal bundles the front end services sharing one client and store.
type Portal struct {
	Auth        *AuthService
	Courses     *CourseService
	Materials   *MaterialService
	Assignments *AssignmentService
	Feed        *FeedService
	Theme       *Theme

	api *apiclient.Client
}

// New wires the services over store. The access token stored under
// localstore.KeyToken is attached to every request.
func New(cfg Config, store localstore.Store) *Portal {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	tokens := apiclient.TokenFunc(func() string {
		token, _ := store.Get(localstore.KeyToken)
		return token
	})
	api := apiclient.New(cfg.BaseURL,
		apiclient.WithHTTPClient(hc),
		apiclient.WithTokenSource(tokens),
		apiclient.WithLogger(cfg.Logger.With().Str("component", "apiclient").Logger()),
	)

	return &Portal{
		Auth:        &AuthService{api: api, store: store, log: cfg.Logger},
		Courses:     &CourseService{api: api},
		Materials:   &MaterialService{api: api, http: hc},
		Assignments: &AssignmentService{api: api},
		Feed:        &FeedService{api: api},
		Theme:       NewTheme(store, cfg.Theme),
		api:         api,
	}
}

// Client exposes the underlying REST client.
func (p *Portal) Client() *apiclient.Client {
	return p.api
}

// Params are list query parameters. Empty values are dropped.
type Params map[string]string

// Envelope is the body of every resource endpoint.
type Envelope[T any] struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Data       T                   `json:"data"`
	Pagination *dto.PaginationInfo `json:"pagination"`
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items      []T
	Pagination dto.PaginationInfo
}

func getData[T any](ctx context.Context, api *apiclient.Client, endpoint string) (T, error) {
	var env Envelope[T]
	if err := api.Get(ctx, endpoint, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

func getPage[T any](ctx context.Context, api *apiclient.Client, endpoint string, params Params) (*Page[T], error) {
	var env Envelope[[]T]
	if err := api.Get(ctx, apiclient.WithQuery(endpoint, params), &env); err != nil {
		return nil, err
	}
	page := &Page[T]{Items: env.Data}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	} else {
		page.Pagination = dto.PaginationInfo{CurrentPage: 1, TotalPages: 1, PageSize: len(env.Data), TotalItems: len(env.Data)}
	}
	return page, nil
}

// send issues a write and decodes the envelope data into a new T.
func send[T any](ctx context.Context, api *apiclient.Client, method, endpoint string, body interface{}) (*T, error) {
	var env Envelope[*T]
	if body == nil && method != http.MethodDelete {
		body = struct{}{}
	}
	if err := api.Do(ctx, method, endpoint, body, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// acknowledge issues a write whose response only carries a message.
func acknowledge(ctx context.Context, api *apiclient.Client, method, endpoint string, body interface{}) (string, error) {
	var resp dto.SuccessResponse
	if body == nil && method != http.MethodDelete {
		body = struct{}{}
	}
	if err := api.Do(ctx, method, endpoint, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func pathID(v int64) string {
	return strconv.FormatInt(v, 10)
}
