// Package ports declares the storage and delivery boundaries of the
// verification service.
package ports

//go:generate mockgen -destination=mocks/mocks.go -package=mocks trustmatrix/internal/verification/ports RecordStore,Notifier,UserStore,TxUserStore,UserTx
