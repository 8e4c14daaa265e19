package main

// Config is the loragwd TOML configuration schema, the same flat
// flag-plus-struct-tag shape _examples/tve-devices/cmd/mqttradio/main.go
// uses for its own Config/RadioConfig/MqttConfig.
type Config struct {
	Debug  bool
	Serial SerialConfig
	SPI    SPIConfig
}

// SerialConfig names the host-facing UART device.
type SerialConfig struct {
	Port string // e.g. "/dev/ttyUSB0"
}

// SPIConfig names the SPI bus and GPIO pins wired to the transceiver and its
// antenna switch.
type SPIConfig struct {
	Bus        string `toml:"bus"`         // e.g. "/dev/spidev0.0"
	IntrPin    string `toml:"intr_pin"`    // radio IRQ / DIO1 line
	ResetPin   string `toml:"reset_pin"`   // radio NRESET line
	SwitchPin1 string `toml:"switch_pin1"` // RF switch control pin 1
	SwitchPin2 string `toml:"switch_pin2"` // RF switch control pin 2
}
