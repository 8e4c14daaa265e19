package radio

import (
	"sync"

	"github.com/tve/lplora/gpio"
	"github.com/tve/lplora/logging"
	"github.com/tve/lplora/packet"
	"github.com/tve/lplora/queue"
)

// mode is the controller's view of the radio state machine (spec §3):
// Uninit, Standby, Sleep, Rx, Tx.
type mode int

const (
	modeUninit mode = iota
	modeStandby
	modeSleep
	modeRx
	modeTx
)

func (m mode) String() string {
	switch m {
	case modeStandby:
		return "Standby"
	case modeSleep:
		return "Sleep"
	case modeRx:
		return "Rx"
	case modeTx:
		return "Tx"
	default:
		return "Uninit"
	}
}

const maxPendingSend = 256 // spec §3: RadioSend payload is at most 256 bytes

// Controller is the single owner of a Radio capability, consolidating the
// "stolen handles" pattern flagged in spec §9 into one mutex-guarded value
// that both the serial dispatcher and the radio IRQ loop reach through
// (mirroring the sync.Mutex-guarded single ownership of
// _examples/tve-devices/sx1276/sx1276.go's Radio struct).
type Controller struct {
	mu  sync.Mutex
	hw  Radio
	sw  gpio.Switch
	log logging.Logger

	mode mode // current state; also resolves the "was_tx" bug (spec §9):
	// the mode we were in when Timeout fires IS whether we were
	// transmitting or receiving, no separate (buggy, unset) flag needed.

	// txQueue is the device->host byte queue; RxDone packages an inbound
	// frame directly into it (spec §4.4 point 2).
	txQueue *queue.Ring
	// notifyHostTx pends the Serial Tx "interrupt" so a freshly queued
	// reply starts draining (spec §4.4 point 2, §4.6).
	notifyHostTx func()

	// pending is the radio-Tx pending queue (spec §5): Serial-IRQ writes
	// payloads queued by a RadioSend command, Radio-IRQ drains them on the
	// next software-pended wake.
	pending *queue.Ring
}

// New returns a Controller that has not yet run its initial setup.
// notifyHostTx may be nil and supplied later via SetNotifyHostTx once the
// caller holding the host link is constructed.
func New(hw Radio, sw gpio.Switch, txQueue *queue.Ring, notifyHostTx func(), log logging.Logger) *Controller {
	if log == nil {
		log = logging.Nop{}
	}
	return &Controller{
		hw: hw, sw: sw, txQueue: txQueue, notifyHostTx: notifyHostTx,
		pending: queue.New(), log: log, mode: modeUninit,
	}
}

// SetNotifyHostTx installs (or replaces) the callback used to pend the
// serial Tx vector after RxDone queues a reply frame.
func (c *Controller) SetNotifyHostTx(notify func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifyHostTx = notify
}

// Setup performs the boot-time radio configuration from spec §4.4: standby
// with RC clock, LoRa packet type, default sync word, default LoRa mod/pkt
// params, SMPS regulator, 140mA OCP, the full IRQ mask, and standby-HSE
// fallback after Tx/Rx.
func (c *Controller) Setup() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	steps := []func() error{
		func() error { return c.hw.SetStandby(StandbyRC) },
		func() error { return c.hw.SetPacketType(PacketLoRa) },
		func() error { return c.hw.SetLoRaSyncWord(DefaultLoRaSyncWord) },
		func() error { return c.hw.SetLoRaModParams(DefaultLoRaModParams) },
		func() error { return c.hw.SetLoRaPacketParams(DefaultLoRaPacketParams) },
		func() error { return c.hw.SetRegulatorMode(RegulatorSMPS) },
		func() error { return c.hw.SetPAOCP(OCP140mA) },
		func() error { return c.hw.SetIRQMask(DefaultIRQMask) },
		func() error { return c.hw.SetFallbackMode(FallbackStandbyHSE) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			c.log.Errorf("radio: setup failed: %v", err)
			return err
		}
	}
	c.mode = modeStandby
	c.log.Infof("radio: setup complete")
	return nil
}

// GoIdle handles RadioGoIdle: standby with RC clock.
func (c *Controller) GoIdle() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.hw.SetStandby(StandbyRC); err != nil {
		return err
	}
	c.mode = modeStandby
	return nil
}

// GoSleep handles RadioGoSleep: cold start, RTC wakeup disabled.
func (c *Controller) GoSleep() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.hw.SetSleep(); err != nil {
		return err
	}
	c.mode = modeSleep
	return nil
}

// ApplyPhy handles RadioPhyConfig.
func (c *Controller) ApplyPhy(pa PAConfig, tx TxParams, ocp OCP, rxBoost bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.hw.SetStandby(StandbyRC); err != nil {
		return err
	}
	c.mode = modeStandby
	if err := c.hw.SetBufferBaseAddress(0, 0); err != nil {
		return err
	}
	if err := c.hw.SetRegulatorMode(RegulatorSMPS); err != nil {
		return err
	}
	if err := c.hw.SetPAConfig(pa); err != nil {
		return err
	}
	if err := c.hw.SetPAOCP(ocp); err != nil {
		return err
	}
	if err := c.hw.SetTxParams(tx); err != nil {
		return err
	}
	return c.hw.SetRxGain(rxBoost)
}

// ApplyFreq handles RadioFreqConfig: range-checked elsewhere (config
// package), here it sets the frequency and runs image calibration over
// [4*floor(mhz/4)-4, 4*floor(mhz/4)+4] MHz per spec §4.4.
func (c *Controller) ApplyFreq(hz uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.hw.SetRFFrequency(hz); err != nil {
		return err
	}
	mhz := hz / 1_000_000
	freqx4 := mhz - (mhz % 4)
	return c.hw.CalibrateImage(uint16(freqx4-4), uint16(freqx4+4))
}

// ApplyLoRa handles RadioLoraConfig.
func (c *Controller) ApplyLoRa(sync [2]byte, mod LoRaModParams, pkt LoRaPacketParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.hw.SetStandby(StandbyRC); err != nil {
		return err
	}
	c.mode = modeStandby
	if err := c.hw.SetPacketType(PacketLoRa); err != nil {
		return err
	}
	if err := c.hw.SetLoRaSyncWord(sync); err != nil {
		return err
	}
	if err := c.hw.SetLoRaModParams(mod); err != nil {
		return err
	}
	return c.hw.SetLoRaPacketParams(pkt)
}

// ApplyGfsk handles RadioGfskConfig.
func (c *Controller) ApplyGfsk(sync []byte, mod GfskModParams, pkt GfskPacketParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.hw.SetStandby(StandbyRC); err != nil {
		return err
	}
	c.mode = modeStandby
	if err := c.hw.SetPacketType(PacketGFSK); err != nil {
		return err
	}
	if err := c.hw.SetSyncWord(sync); err != nil {
		return err
	}
	if err := c.hw.SetGfskModParams(mod); err != nil {
		return err
	}
	return c.hw.SetGfskPacketParams(pkt)
}

// StartRx handles RadioRecvStart: sets the RF switch to Rx and arms the
// receiver with the given timeout.
func (c *Controller) StartRx(timeoutMs uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startRxLocked(timeoutMs)
}

func (c *Controller) startRxLocked(timeoutMs uint32) error {
	if err := c.sw.ToRx(); err != nil {
		return err
	}
	if err := c.hw.SetRx(TimeoutFromMillis(timeoutMs)); err != nil {
		return err
	}
	c.mode = modeRx
	return nil
}

// QueueSend handles RadioSend: copies payload into the radio-Tx pending
// buffer with drop-oldest (truncated to the 256-byte limit from spec §3),
// leaving the actual Tx start to the next radio IRQ wake.
func (c *Controller) QueueSend(payload []byte) {
	if len(payload) > maxPendingSend {
		payload = payload[:maxPendingSend]
	}
	for _, b := range payload {
		c.pending.PushEvict(b)
	}
}

// HandleIRQ implements the radio IRQ handler from spec §4.4: read-and-clear
// the IRQ status word and dispatch on its bits in priority order (Timeout,
// RxDone, TxDone), treating no bits set as the software-pended signal to
// drain the radio-Tx pending buffer.
func (c *Controller) HandleIRQ() {
	c.mu.Lock()
	defer c.mu.Unlock()

	irq, err := c.hw.IRQStatus()
	if err != nil {
		c.log.Errorf("radio: IRQStatus: %v", err)
		return
	}
	if err := c.hw.ClearIRQStatus(irq); err != nil {
		c.log.Errorf("radio: ClearIRQStatus: %v", err)
	}

	switch {
	case irq&IRQTimeout != 0:
		c.handleTimeoutLocked()
	case irq&IRQRxDone != 0:
		c.handleRxDoneLocked()
	case irq&IRQTxDone != 0:
		c.handleTxDoneLocked()
	case irq == 0:
		c.drainPendingLocked()
	}
}

func (c *Controller) handleTimeoutLocked() {
	switch c.mode {
	case modeTx:
		c.log.Errorf("radio: Tx timeout")
		// No payload was delivered; fall back to listening per the
		// fallback discipline so the link doesn't stall.
		if err := c.startRxLocked(DefaultRxTimeoutMillis); err != nil {
			c.log.Errorf("radio: restart Rx after Tx timeout: %v", err)
		}
	case modeRx:
		if err := c.startRxLocked(DefaultRxTimeoutMillis); err != nil {
			c.log.Errorf("radio: restart Rx after Rx timeout: %v", err)
		}
	default:
		c.log.Warnf("radio: timeout IRQ while in mode %v", c.mode)
	}
}

func (c *Controller) handleRxDoneLocked() {
	if err := c.sw.ToIsolated(); err != nil {
		c.log.Errorf("radio: RF switch to isolated: %v", err)
	}

	status, err := c.hw.LoRaPacketStatus()
	if err != nil {
		c.log.Errorf("radio: LoRaPacketStatus: %v", err)
	}
	n, ptr, err := c.hw.RxBufferStatus()
	if err != nil {
		c.log.Errorf("radio: RxBufferStatus: %v", err)
		n = 0
	}
	data, err := c.hw.ReadBuffer(ptr, int(n))
	if err != nil {
		c.log.Errorf("radio: ReadBuffer: %v", err)
		data = nil
	}

	packet.MakeReceivedPacket(c.txQueue, status.RSSI, status.SNR, data)

	if err := c.startRxLocked(DefaultRxTimeoutMillis); err != nil {
		c.log.Errorf("radio: restart Rx after RxDone: %v", err)
	}
	if c.notifyHostTx != nil {
		c.notifyHostTx()
	}
}

func (c *Controller) handleTxDoneLocked() {
	if err := c.startRxLocked(DefaultRxTimeoutMillis); err != nil {
		c.log.Errorf("radio: restart Rx after TxDone: %v", err)
	}
}

func (c *Controller) drainPendingLocked() {
	var buf [maxPendingSend]byte
	n := 0
	for n < len(buf) {
		b, ok := c.pending.Pop()
		if !ok {
			break
		}
		buf[n] = b
		n++
	}
	if n == 0 {
		return
	}
	if err := c.sw.ToTx(); err != nil {
		c.log.Errorf("radio: RF switch to Tx: %v", err)
		return
	}
	if err := c.hw.WriteBuffer(0, buf[:n]); err != nil {
		c.log.Errorf("radio: WriteBuffer: %v", err)
		return
	}
	if err := c.hw.SetTx(Timeout{Disabled: true}); err != nil {
		c.log.Errorf("radio: SetTx: %v", err)
		return
	}
	c.mode = modeTx
}
