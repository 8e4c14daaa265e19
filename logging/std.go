package logging

import "log"

// Std is a Logger backed by the standard library's log package, used by
// cmd/loragwd the way _examples/tve-devices/cmd/mqttradio/main.go wires
// log.Printf into its LogPrintf closure when -debug is passed.
type Std struct {
	Verbose bool // gate Debugf the way mqttradio gates on config.Debug
}

func (s Std) Debugf(format string, args ...interface{}) {
	if s.Verbose {
		log.Printf("DEBUG "+format, args...)
	}
}

func (s Std) Infof(format string, args ...interface{}) {
	log.Printf("INFO  "+format, args...)
}

func (s Std) Warnf(format string, args ...interface{}) {
	log.Printf("WARN  "+format, args...)
}

func (s Std) Errorf(format string, args ...interface{}) {
	log.Printf("ERROR "+format, args...)
}

var _ Logger = Std{}
