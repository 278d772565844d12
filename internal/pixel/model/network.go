package model

// Network names the bitcoin network a node follows.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkRegtest Network = "regtest"
	NetworkSignet  Network = "signet"
)
