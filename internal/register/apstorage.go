// internal/register/apstorage.go
package register

import "sync"

// APstorage holding register addresses referenced outside the table.
const (
	AddrManufacturer  uint16 = 40004
	AddrModel         uint16 = 40020
	AddrVersion       uint16 = 40044
	AddrSerialNumber  uint16 = 40052
	AddrDeviceAddress uint16 = 40068
	AddrSoCReserveMax uint16 = 40079
	AddrSoCReserveMin uint16 = 40080
	AddrStateOfCharge uint16 = 40081
	AddrChargeStatus  uint16 = 40086
	AddrBatteryAlarms uint16 = 40096
	AddrPCSAlarms     uint16 = 40100
	AddrSetPower      uint16 = 40183
)

var chargeStatus = map[uint16]string{
	1: "OFF",
	2: "EMPTY",
	3: "DISCHARGING",
	4: "CHARGING",
	5: "FULL",
	6: "HOLDING",
	7: "TESTING",
}

// ChargeStatusLabel returns the label for a charge status register value.
func ChargeStatusLabel(raw uint16) (string, bool) {
	label, ok := chargeStatus[raw]
	return label, ok
}

func u16(addr uint16, name string, scale float64, unit string, class DeviceClass) Definition {
	return Definition{Address: addr, Name: name, Words: 1, Type: Uint16, Scale: scale, Unit: unit, Class: class}
}

func i16(addr uint16, name string, scale float64, unit string, class DeviceClass) Definition {
	return Definition{Address: addr, Name: name, Words: 1, Type: Int16, Scale: scale, Unit: unit, Class: class}
}

func u32(addr uint16, name string, scale float64, unit string, class DeviceClass) Definition {
	return Definition{Address: addr, Name: name, Words: 2, Type: Uint32, Scale: scale, Unit: unit, Class: class}
}

func str(addr uint16, name string, words uint16) Definition {
	return Definition{Address: addr, Name: name, Words: words, Type: String, Scale: 1}
}

func diag(d Definition) Definition {
	d.Diagnostic = true
	return d
}

var apstorageDefinitions = []Definition{
	// device information
	diag(u16(40002, "Model ID", 1, "", ClassNone)),
	diag(u16(40003, "Model Length", 1, "", ClassNone)),
	str(AddrManufacturer, "Manufacturer", 16),
	str(AddrModel, "Model", 16),
	str(40036, "Options", 8),
	str(AddrVersion, "Version", 8),
	str(AddrSerialNumber, "Serial Number", 16),
	diag(u16(AddrDeviceAddress, "Device Address", 1, "", ClassNone)),
	diag(u16(40070, "Model ID 802", 1, "", ClassNone)),
	diag(u16(40071, "Model Length 128", 1, "", ClassNone)),

	// battery ratings
	u16(40073, "Energy Capacity (WHRtg)", 0.01, "kWh", ClassEnergy),
	u16(40074, "Max Charge Rate", 1, "W", ClassPower),
	u16(40075, "Max Discharge Rate", 1, "W", ClassPower),
	u16(40077, "SoC Max", 0.1, "%", ClassNone),
	u16(40078, "SoC Min", 0.1, "%", ClassNone),
	u16(AddrSoCReserveMax, "SoC Reserve Max (SoCRsvMax)", 0.1, "%", ClassNone),
	u16(AddrSoCReserveMin, "SoC Reserve Min (SoCRsvMin)", 0.1, "%", ClassNone),

	// battery state
	u16(AddrStateOfCharge, "State of Charge (SoC)", 0.1, "%", ClassBattery),
	u16(40083, "State of Health (SoH)", 1, "%", ClassNone),
	{Address: AddrChargeStatus, Name: "Charge Status", Words: 1, Type: Enum16, Scale: 1},
	diag(u16(40089, "Controller Heartbeat", 1, "", ClassNone)),

	// alarms
	{Address: AddrBatteryAlarms, Name: "Battery Event 1 Bitfield", Words: 2, Type: Bitfield32, Scale: 1, Diagnostic: true},
	{Address: AddrPCSAlarms, Name: "PCS Alarm Bitfield (EvtVnd1)", Words: 2, Type: Bitfield32, Scale: 1, Diagnostic: true},

	// dc side
	u16(40104, "DC Bus Voltage", 0.1, "V", ClassVoltage),
	i16(40114, "DC Current", 0.1, "A", ClassCurrent),
	i16(40117, "Battery Power", 1, "W", ClassPower),
	u16(40134, "Battery Voltage", 0.1, "V", ClassVoltage),

	// ac active / reactive power
	i16(40135, "Active Power Phase A", 1, "W", ClassPower),
	i16(40136, "Active Power Phase B", 1, "W", ClassPower),
	i16(40137, "Active Power Phase C", 1, "W", ClassPower),
	u16(40138, "Reactive Power Phase A", 1, "Var", ClassNone),
	u16(40139, "Reactive Power Phase B", 1, "Var", ClassNone),
	u16(40140, "Reactive Power Phase C", 1, "Var", ClassNone),

	// energy
	u16(40146, "Daily Charge Energy", 0.01, "kWh", ClassEnergy),
	u16(40147, "Daily Discharge Energy", 0.01, "kWh", ClassEnergy),
	u32(40148, "Charge Energy", 0.01, "kWh", ClassEnergy),
	u32(40150, "Discharge Energy", 0.01, "kWh", ClassEnergy),

	// grid
	i16(40153, "Grid Power Phase A", 1, "W", ClassPower),
	i16(40154, "Grid Power Phase B", 1, "W", ClassPower),
	i16(40155, "Grid Power Phase C", 1, "W", ClassPower),

	// temperature
	i16(40156, "Battery Temperature", 0.1, "°C", ClassTemperature),
	i16(40157, "PCS Temperature", 0.1, "°C", ClassTemperature),

	// firmware
	diag(str(40159, "Chip1 Version", 8)),
	diag(str(40167, "Chip2 Version", 8)),
	diag(str(40175, "Chip3 Version", 8)),

	// control
	i16(AddrSetPower, "Set Power", 1, "W", ClassPower),
}

var apstorageWritable = map[uint16]WritableSpec{
	AddrDeviceAddress: {Min: 1, Max: 247, Step: 1, Mode: ModeBox},
	AddrSoCReserveMax: {Min: 0, Max: 100, Step: 0.1, Mode: ModeSlider},
	AddrSoCReserveMin: {Min: 0, Max: 100, Step: 0.1, Mode: ModeSlider},
	AddrSetPower:      {Min: -10000, Max: 10000, Step: 1, Mode: ModeBox},
}

var apstorageAlarms = map[uint16]AlarmBitMap{
	AddrBatteryAlarms: {
		0:  "COMMUNICATION_ERROR",
		1:  "OVER_TEMP_ALARM",
		3:  "UNDER_TEMP_ALARM",
		5:  "OVER_CHARGE_CURRENT_ALARM",
		7:  "OVER_DISCHARGE_CURRENT_ALARM",
		9:  "OVER_VOLT_ALARM",
		11: "UNDER_VOLT_ALARM",
		22: "GROUND_FAULT",
	},
	AddrPCSAlarms: {
		0:  "PCS_COMMUNICATION_ERROR",
		1:  "AC_A_Voltage_stage1_Exceeding_Range",
		2:  "AC_A_Voltage_stage1_Under_Range",
		3:  "AC_B_Voltage_stage1_Exceeding_Range",
		4:  "AC_B_Voltage_stage1_Under_Range",
		5:  "AC_C_Voltage_stage1_Exceeding_Range",
		6:  "AC_C_Voltage_stage1_Under_Range",
		7:  "AC_A_Voltage_stage2_Exceeding_Range",
		8:  "AC_A_Voltage_stage2_Under_Range",
		9:  "AC_B_Voltage_stage2_Exceeding_Range",
		10: "AC_B_Voltage_stage2_Under_Range",
		11: "AC_C_Voltage_stage2_Exceeding_Range",
		12: "AC_C_Voltage_stage2_Under_Range",
		13: "AC_A_Voltage_stage3_Exceeding_Range",
		14: "AC_A_Voltage_stage3_Under_Range",
		15: "AC_B_Voltage_stage3_Exceeding_Range",
		16: "AC_B_Voltage_stage3_Under_Range",
		17: "AC_C_Voltage_stage3_Exceeding_Range",
		18: "AC_C_Voltage_stage3_Under_Range",
		19: "AC_A_Voltage_stage4_Exceeding_Range",
		20: "AC_A_Voltage_stage4_Under_Range",
		21: "AC_B_Voltage_stage4_Exceeding_Range",
		22: "AC_B_Voltage_stage4_Under_Range",
		23: "AC_C_Voltage_stage4_Exceeding_Range",
		24: "AC_C_Voltage_stage4_Under_Range",
	},
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the APstorage register catalog.
// It panics if the built-in tables are inconsistent.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := NewCatalog(apstorageDefinitions, apstorageWritable, apstorageAlarms)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}
