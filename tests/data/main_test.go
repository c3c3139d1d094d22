package data

import (
	"os"
	"testing"

	tcommon "github.com/bobmcallan/chitlens/tests/common"
)

func TestMain(m *testing.M) {
	code := m.Run()
	tcommon.CleanupContainers()
	os.Exit(code)
}
