package updater

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/api"
)

func inventoryMembers() []api.InventoryMember {
	return []api.InventoryMember{
		{Path: "/redfish/v1/UpdateService/FirmwareInventory/BMC", Name: "BMC", Version: "2.14"},
		{Path: "/redfish/v1/UpdateService/FirmwareInventory/BIOS", Name: "BIOS", Version: "1.07"},
		{Path: "/redfish/v1/UpdateService/FirmwareInventory/CPLD", Name: "CPLD", Version: "0.3"},
	}
}

func TestSelectTargetsPreservesInputOrder(t *testing.T) {
	var out bytes.Buffer
	got := SelectTargets(strings.NewReader("3 1\n"), &out, inventoryMembers())

	assert.Equal(t, []string{
		"/redfish/v1/UpdateService/FirmwareInventory/CPLD",
		"/redfish/v1/UpdateService/FirmwareInventory/BMC",
	}, got)
}

func TestSelectTargetsBothMembers(t *testing.T) {
	var out bytes.Buffer
	got := SelectTargets(strings.NewReader("1 2\n"), &out, inventoryMembers()[:2])

	assert.Equal(t, []string{
		"/redfish/v1/UpdateService/FirmwareInventory/BMC",
		"/redfish/v1/UpdateService/FirmwareInventory/BIOS",
	}, got)
}

func TestSelectTargetsInvalidTokenDiscardsWholeLine(t *testing.T) {
	var out bytes.Buffer
	// "1 abc" is discarded entirely; "2" on the retry is the selection.
	got := SelectTargets(strings.NewReader("1 abc\n2\n"), &out, inventoryMembers())

	assert.Equal(t, []string{"/redfish/v1/UpdateService/FirmwareInventory/BIOS"}, got)
	assert.Contains(t, out.String(), "Index abc is not valid.")
}

func TestSelectTargetsUnparseableRepromptsThenOptOut(t *testing.T) {
	var out bytes.Buffer
	got := SelectTargets(strings.NewReader("abc\n0\n"), &out, inventoryMembers())

	assert.Nil(t, got)
	// The prompt must have been printed twice: once before the bad line,
	// once after it was discarded.
	assert.Equal(t, 2, strings.Count(out.String(), ">> "))
}

func TestSelectTargetsOutOfRangeDiscardsLine(t *testing.T) {
	var out bytes.Buffer
	got := SelectTargets(strings.NewReader("1 4\n0\n"), &out, inventoryMembers())

	assert.Nil(t, got)
	assert.Contains(t, out.String(), "Index 4 is not valid.")
}

func TestSelectTargetsZeroOptsOut(t *testing.T) {
	var out bytes.Buffer
	assert.Nil(t, SelectTargets(strings.NewReader("0\n"), &out, inventoryMembers()))
}

func TestSelectTargetsEOFOptsOut(t *testing.T) {
	var out bytes.Buffer
	assert.Nil(t, SelectTargets(strings.NewReader(""), &out, inventoryMembers()))
}
