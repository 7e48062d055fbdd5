package gears

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/angelmondragon/gearmarket-web/internal/uploads"
	"github.com/angelmondragon/gearmarket-web/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	"github.com/go-resty/resty/v2"
)

const gearsPath = "/trade/gears"

// API is the upstream listing surface the service and the draft flow depend on.
type API interface {
	List(ctx context.Context, q ListQuery) (*GearListResponse, error)
	Get(ctx context.Context, id int64, token string) (*GearResponse, error)
	Create(ctx context.Context, token string, in CreateInput, files []uploads.File) (*GearResponse, error)
	Update(ctx context.Context, token string, id int64, in UpdateInput, files []uploads.File) (*GearResponse, error)
	Delete(ctx context.Context, token string, id int64) error
}

// Client talks to the upstream listing endpoints.
type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) (*Client, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "api client is required")
	}
	return &Client{api: api}, nil
}

func gearPath(id int64) string {
	return gearsPath + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) List(ctx context.Context, q ListQuery) (*GearListResponse, error) {
	var out GearListResponse
	req := c.api.R(ctx, "").SetQueryParamsFromValues(q.Values())
	if err := c.api.Do(ctx, "gears.list", req, http.MethodGet, gearsPath, &out); err != nil {
		return nil, err
	}
	if out.Gears == nil {
		out.Gears = []GearResponse{}
	}
	return &out, nil
}

// Get fetches one listing. token is optional; with it the upstream fills isAuthor and isLiked.
func (c *Client) Get(ctx context.Context, id int64, token string) (*GearResponse, error) {
	var out GearResponse
	if err := c.api.Do(ctx, "gears.get", c.api.R(ctx, token), http.MethodGet, gearPath(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Create(ctx context.Context, token string, in CreateInput, files []uploads.File) (*GearResponse, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "로그인이 필요합니다.")
	}
	var out GearResponse
	req := multipartRequest(c.api.R(ctx, token), in.formValues(), files)
	if err := c.api.Do(ctx, "gears.create", req, http.MethodPost, gearsPath, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, token string, id int64, in UpdateInput, files []uploads.File) (*GearResponse, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "로그인이 필요합니다.")
	}
	var out GearResponse
	req := multipartRequest(c.api.R(ctx, token), in.formValues(), files)
	if err := c.api.Do(ctx, "gears.update", req, http.MethodPatch, gearPath(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, token string, id int64) error {
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "로그인이 필요합니다.")
	}
	return c.api.Do(ctx, "gears.delete", c.api.R(ctx, token), http.MethodDelete, gearPath(id), nil)
}

// multipartRequest always encodes as multipart/form-data, even with no files.
func multipartRequest(req *resty.Request, fields url.Values, files []uploads.File) *resty.Request {
	parts := make([]*resty.MultipartField, 0, len(files))
	for _, f := range files {
		parts = append(parts, &resty.MultipartField{
			Param:       "images",
			FileName:    f.Name,
			ContentType: f.MIME,
			Reader:      bytes.NewReader(f.Data),
		})
	}
	return req.SetFormDataFromValues(fields).SetMultipartFields(parts...)
}
