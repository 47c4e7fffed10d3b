package sensors

// Device class of a metric, mirrored in the API output so the UI can pick
// icons and formatting.
type SensorClass string

const (
	ClassPower          SensorClass = "power"
	ClassVoltage        SensorClass = "voltage"
	ClassCurrent        SensorClass = "current"
	ClassEnergy         SensorClass = "energy"
	ClassFrequency      SensorClass = "frequency"
	ClassTemperature    SensorClass = "temperature"
	ClassBattery        SensorClass = "battery"
	ClassSignalStrength SensorClass = "signal_strength"
	ClassDuration       SensorClass = "duration"
	ClassDiagnostic     SensorClass = "diagnostic"
	ClassStatus         SensorClass = "status"
)

type SensorDescription struct {
	Key   string      `json:"key"`
	Name  string      `json:"name"`
	Unit  string      `json:"unit,omitempty"`
	Class SensorClass `json:"class,omitempty"`
}

// SensorValue is one projected field: its description plus the value from
// the current reading.
type SensorValue struct {
	SensorDescription
	Value any `json:"value"`
}

// DailyFields are the accumulators the gateway resets at local midnight.
// The coordinator keeps their cached value on same-day fetch failures
// instead of zeroing them; everything else is treated as instantaneous.
// Fixed at build time, not user-configurable.
var DailyFields = []string{
	"TodayGenerateEnergy",
	"PV1EnergyToday",
	"PV2EnergyToday",
	"EnergyToUserToday",
	"EnergyToGridToday",
	"DischargeEnergyToday",
	"ChargeEnergyToday",
}

// Descriptions covers the known field set of Growatt-style gateways.
// Fields the device sends that are not listed here still pass through the
// projection untyped.
var Descriptions = map[string]SensorDescription{
	"InverterStatus":                {Key: "InverterStatus", Name: "Inverter Status Code", Class: ClassStatus},
	"InputPower":                    {Key: "InputPower", Name: "Input Power", Unit: "W", Class: ClassPower},
	"PV1Voltage":                    {Key: "PV1Voltage", Name: "PV1 Voltage", Unit: "V", Class: ClassVoltage},
	"PV1InputCurrent":               {Key: "PV1InputCurrent", Name: "PV1 Current", Unit: "A", Class: ClassCurrent},
	"PV1InputPower":                 {Key: "PV1InputPower", Name: "PV1 Power", Unit: "W", Class: ClassPower},
	"PV2Voltage":                    {Key: "PV2Voltage", Name: "PV2 Voltage", Unit: "V", Class: ClassVoltage},
	"PV2InputCurrent":               {Key: "PV2InputCurrent", Name: "PV2 Current", Unit: "A", Class: ClassCurrent},
	"PV2InputPower":                 {Key: "PV2InputPower", Name: "PV2 Power", Unit: "W", Class: ClassPower},
	"OutputPower":                   {Key: "OutputPower", Name: "Output Power", Unit: "W", Class: ClassPower},
	"GridFrequency":                 {Key: "GridFrequency", Name: "Grid Frequency", Unit: "Hz", Class: ClassFrequency},
	"L1ThreePhaseGridVoltage":       {Key: "L1ThreePhaseGridVoltage", Name: "Grid Voltage L1", Unit: "V", Class: ClassVoltage},
	"L1ThreePhaseGridOutputCurrent": {Key: "L1ThreePhaseGridOutputCurrent", Name: "Grid Current L1", Unit: "A", Class: ClassCurrent},
	"L1ThreePhaseGridOutputPower":   {Key: "L1ThreePhaseGridOutputPower", Name: "Grid Power L1", Unit: "W", Class: ClassPower},
	"TodayGenerateEnergy":           {Key: "TodayGenerateEnergy", Name: "Energy Today", Unit: "kWh", Class: ClassEnergy},
	"TotalGenerateEnergy":           {Key: "TotalGenerateEnergy", Name: "Energy Total", Unit: "kWh", Class: ClassEnergy},
	"TWorkTimeTotal":                {Key: "TWorkTimeTotal", Name: "Total Work Time", Unit: "s", Class: ClassDuration},
	"PV1EnergyToday":                {Key: "PV1EnergyToday", Name: "PV1 Energy Today", Unit: "kWh", Class: ClassEnergy},
	"PV1EnergyTotal":                {Key: "PV1EnergyTotal", Name: "PV1 Energy Total", Unit: "kWh", Class: ClassEnergy},
	"PV2EnergyToday":                {Key: "PV2EnergyToday", Name: "PV2 Energy Today", Unit: "kWh", Class: ClassEnergy},
	"PV2EnergyTotal":                {Key: "PV2EnergyTotal", Name: "PV2 Energy Total", Unit: "kWh", Class: ClassEnergy},
	"PVEnergyTotal":                 {Key: "PVEnergyTotal", Name: "PV Energy Total", Unit: "kWh", Class: ClassEnergy},
	"InverterTemperature":           {Key: "InverterTemperature", Name: "Inverter Temperature", Unit: "°C", Class: ClassTemperature},
	"TemperatureInsideIPM":          {Key: "TemperatureInsideIPM", Name: "IPM Temperature", Unit: "°C", Class: ClassTemperature},
	"BatteryState":                  {Key: "BatteryState", Name: "Battery State Code", Class: ClassStatus},
	"BatteryVoltage":                {Key: "BatteryVoltage", Name: "Battery Voltage", Unit: "V", Class: ClassVoltage},
	"BatteryTemperature":            {Key: "BatteryTemperature", Name: "Battery Temperature", Unit: "°C", Class: ClassTemperature},
	"SOC":                           {Key: "SOC", Name: "Battery State of Charge", Unit: "%", Class: ClassBattery},
	"ChargePower":                   {Key: "ChargePower", Name: "Charge Power", Unit: "W", Class: ClassPower},
	"DischargePower":                {Key: "DischargePower", Name: "Discharge Power", Unit: "W", Class: ClassPower},
	"ChargeEnergyToday":             {Key: "ChargeEnergyToday", Name: "Charge Energy Today", Unit: "kWh", Class: ClassEnergy},
	"ChargeEnergyTotal":             {Key: "ChargeEnergyTotal", Name: "Charge Energy Total", Unit: "kWh", Class: ClassEnergy},
	"DischargeEnergyToday":          {Key: "DischargeEnergyToday", Name: "Discharge Energy Today", Unit: "kWh", Class: ClassEnergy},
	"DischargeEnergyTotal":          {Key: "DischargeEnergyTotal", Name: "Discharge Energy Total", Unit: "kWh", Class: ClassEnergy},
	"EnergyToUserToday":             {Key: "EnergyToUserToday", Name: "Energy To User Today", Unit: "kWh", Class: ClassEnergy},
	"EnergyToUserTotal":             {Key: "EnergyToUserTotal", Name: "Energy To User Total", Unit: "kWh", Class: ClassEnergy},
	"EnergyToGridToday":             {Key: "EnergyToGridToday", Name: "Energy To Grid Today", Unit: "kWh", Class: ClassEnergy},
	"EnergyToGridTotal":             {Key: "EnergyToGridTotal", Name: "Energy To Grid Total", Unit: "kWh", Class: ClassEnergy},
	"ACPowerToGrid":                 {Key: "ACPowerToGrid", Name: "AC Power To Grid", Unit: "W", Class: ClassPower},
	"ACPowerToUser":                 {Key: "ACPowerToUser", Name: "AC Power To User", Unit: "W", Class: ClassPower},
	"INVPowerToLocalLoad":           {Key: "INVPowerToLocalLoad", Name: "Power To Local Load", Unit: "W", Class: ClassPower},
	"HeapFree":                      {Key: "HeapFree", Name: "Gateway Free Heap", Unit: "B", Class: ClassDiagnostic},
	"Uptime":                        {Key: "Uptime", Name: "Gateway Uptime", Unit: "s", Class: ClassDuration},
	"WifiRSSI":                      {Key: "WifiRSSI", Name: "WiFi Signal", Unit: "dBm", Class: ClassSignalStrength},
}
