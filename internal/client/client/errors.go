package client

import (
	"errors"

	"github.com/dmitrijs2005/airpass/internal/common"
)

var (
	ErrUnavailable  = common.ErrorOffline
	ErrUnauthorized = common.ErrorUnauthorized
	ErrRateLimited  = errors.New("rate limited")
	ErrNotSignedIn  = errors.New("not signed in")
)
