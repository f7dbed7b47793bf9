package app

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
)

func mapsetFromSlice(addrs []common.Address) mapset.Set[common.Address] {
	s := mapset.NewThreadUnsafeSet[common.Address]()
	for _, a := range addrs {
		s.Add(a)
	}
	return s
}
