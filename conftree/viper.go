package conftree

import (
	"github.com/spf13/viper"
)

// FromViper snapshots a viper tree into a section. Hosts that already load
// configuration through viper can hand the resulting section straight to the
// composition engine. Later changes to the viper instance are not reflected.
func FromViper(v *viper.Viper) *Section {
	if v == nil {
		return New(nil)
	}
	return New(v.AllSettings())
}
