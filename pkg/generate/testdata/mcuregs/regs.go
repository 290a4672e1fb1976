// Package regs is a register implementation package for the board
// example. Every register has a tagged type and an address binding.
package regs

import "github.com/mash-protocol/regtokens/pkg/token"

// Reg is the address of a memory mapped register.
type Reg struct {
	Addr uintptr
}

type GpioaOdrReg[T token.Tag] struct{ reg Reg }

type GpioaIdrReg[T token.Tag] struct{ reg Reg }

type RccCrReg[T token.Tag] struct{ reg Reg }

type RccAhb1enrReg[T token.Tag] struct{ reg Reg }

type Tim2CntReg[T token.Tag] struct{ reg Reg }

type Tim2ArrReg[T token.Tag] struct{ reg Reg }

var (
	GpioaOdr   = Reg{Addr: 0x40020014}
	GpioaIdr   = Reg{Addr: 0x40020010}
	RccCr      = Reg{Addr: 0x40023800}
	RccAhb1enr = Reg{Addr: 0x40023830}
	Tim2Cnt    = Reg{Addr: 0x40000024}
	Tim2Arr    = Reg{Addr: 0x4000002c}
)
