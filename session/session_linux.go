//go:build linux && cgo

package session

import (
	"github.com/msteinert/pam/v2"
)

type pamTransaction struct {
	tx *pam.Transaction
}

func startTransaction(service, username string) (transaction, error) {
	tx, err := pam.StartFunc(service, username, func(pam.Style, string) (string, error) {
		// Authentication happened before us, there is nothing to answer.
		return "", nil
	})
	if err != nil {
		return nil, err
	}

	return &pamTransaction{tx: tx}, nil
}

func (p *pamTransaction) validateAccount() error { return p.tx.AcctMgmt(pam.Silent) }
func (p *pamTransaction) openSession() error     { return p.tx.OpenSession(pam.Silent) }
func (p *pamTransaction) closeSession() error    { return p.tx.CloseSession(pam.Silent) }

func (p *pamTransaction) environ() map[string]string {
	env, err := p.tx.GetEnvList()
	if err != nil {
		return nil
	}
	return env
}

func (p *pamTransaction) end() error { return p.tx.End() }
