package app

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/batchauction/engine/internal/ethrpc"
	"github.com/batchauction/engine/pkg/fixedpoint"
)

// gasPricer reads the node's current gas price through the batched
// transport (`eth_gasPrice`).
type gasPricer struct {
	transport *ethrpc.Transport
}

func (g *gasPricer) CurrentGasPrice(ctx context.Context) (fixedpoint.Amount, error) {
	var raw hexutil.Big
	if err := g.transport.Call(ctx, &raw, "eth_gasPrice"); err != nil {
		return fixedpoint.Amount{}, fmt.Errorf("eth_gasPrice: %w", err)
	}
	return fixedpoint.NewFromString(raw.ToInt().String())
}

// balanceChecker reads a solver's native balance (`eth_getBalance`).
type balanceChecker struct {
	transport *ethrpc.Transport
}

func (b *balanceChecker) Balance(ctx context.Context, addr common.Address) (fixedpoint.Amount, error) {
	var raw hexutil.Big
	if err := b.transport.Call(ctx, &raw, "eth_getBalance", addr, "latest"); err != nil {
		return fixedpoint.Amount{}, fmt.Errorf("eth_getBalance: %w", err)
	}
	return fixedpoint.NewFromString(raw.ToInt().String())
}

// contractChecker distinguishes a contract receiver from an EOA via
// its deployed bytecode (`eth_getCode`).
type contractChecker struct {
	transport *ethrpc.Transport
}

func (c *contractChecker) IsContract(ctx context.Context, addr common.Address) (bool, error) {
	var raw hexutil.Bytes
	if err := c.transport.Call(ctx, &raw, "eth_getCode", addr, "latest"); err != nil {
		return false, fmt.Errorf("eth_getCode: %w", err)
	}
	return len(raw) > 0, nil
}
