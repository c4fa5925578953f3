package utils

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"yideng/ledger"

	"github.com/go-resty/resty/v2"
)

// CompletionOracleClient asks the learning platform whether a holder finished a course.
// The endpoint answers GET ?address=&courseId= with {"completed": bool}; 404 means no.
type CompletionOracleClient struct {
	client *resty.Client
	url    string
}

func NewCompletionOracleClient(url string) *CompletionOracleClient {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(300*time.Millisecond).
		SetHeader("Accept", "application/json")
	return &CompletionOracleClient{client: client, url: url}
}

func (o *CompletionOracleClient) Completed(ctx context.Context, holder ledger.Address, courseID string) (bool, error) {
	var result struct {
		Completed bool `json:"completed"`
	}

	resp, err := o.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"address":  holder.String(),
			"courseId": courseID,
		}).
		SetResult(&result).
		Get(o.url)
	if err != nil {
		return false, fmt.Errorf("call completion oracle: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return false, nil
	case resp.IsError():
		return false, fmt.Errorf("completion oracle returned %d: %s", resp.StatusCode(), resp.String())
	}
	return result.Completed, nil
}
