//go:build !linux || !cgo

package session

import "errors"

func startTransaction(string, string) (transaction, error) {
	return nil, errors.New("platform session management requires linux with cgo")
}
