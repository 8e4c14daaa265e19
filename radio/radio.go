package radio

// Radio is the external capability the controller drives: standby/sleep,
// configuration, starting Rx/Tx, reading the Rx buffer and status, and
// reading/clearing the IRQ word. Register-level SPI programming of the
// physical transceiver is out of scope for this module (spec §1); Radio is
// the seam a concrete driver plugs into. radio/hw.go provides a reference
// implementation against an SPI-attached sub-GHz chip.
type Radio interface {
	SetStandby(clock StandbyClock) error
	SetSleep() error
	SetPacketType(pt PacketType) error
	SetFallbackMode(mode FallbackMode) error
	SetRegulatorMode(mode RegulatorMode) error
	SetBufferBaseAddress(tx, rx byte) error
	SetPAOCP(ocp OCP) error
	SetPAConfig(cfg PAConfig) error
	SetTxParams(p TxParams) error
	SetRxGain(boost bool) error
	SetIRQMask(mask IRQ) error

	SetLoRaSyncWord(sw [2]byte) error
	SetLoRaModParams(p LoRaModParams) error
	SetLoRaPacketParams(p LoRaPacketParams) error

	SetSyncWord(sw []byte) error
	SetGfskModParams(p GfskModParams) error
	SetGfskPacketParams(p GfskPacketParams) error

	SetRFFrequency(hz uint32) error
	CalibrateImage(loMHz, hiMHz uint16) error

	SetRx(timeout Timeout) error
	SetTx(timeout Timeout) error

	WriteBuffer(offset byte, data []byte) error
	ReadBuffer(offset byte, n int) ([]byte, error)
	RxBufferStatus() (payloadLen byte, bufPtr byte, err error)
	LoRaPacketStatus() (PacketStatus, error)

	IRQStatus() (IRQ, error)
	ClearIRQStatus(mask IRQ) error

	// DeviceID returns the 20-byte unique identifier assembled from the
	// three 32-bit words and one 64-bit word described in spec §6.
	DeviceID() ([20]byte, error)
}
