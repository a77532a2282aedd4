package domain

// Channel identifiers. Names match the producer's wire field names so a
// consumer can correlate a buffer with the envelope key that feeds it.
const (
	ChannelSerial           = "serial"
	ChannelRawPressure      = "raw_pressure"
	ChannelFilteredPressure = "filtered_pressure"
	ChannelTractorSpeed     = "tractor_speed"
	ChannelCTPressure       = "ct_pressure"
	ChannelWHPressure       = "wh_pressure"
	ChannelCTDepth          = "ct_depth"
	ChannelCTWeight         = "ct_weight"
	ChannelCTSpeed          = "ct_speed"
	ChannelCTFluidRate      = "ct_fluid_rate"
	ChannelN2FluidRate      = "n2_fluid_rate"
)

// RIGChannels lists the seven rig-telemetry channels in wire order.
var RIGChannels = []string{
	ChannelCTPressure,
	ChannelWHPressure,
	ChannelCTDepth,
	ChannelCTWeight,
	ChannelCTSpeed,
	ChannelCTFluidRate,
	ChannelN2FluidRate,
}
