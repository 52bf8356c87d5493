package project

import (
	"bytes"
	"fmt"
	"time"

	"fisnar/common/file"
	"fisnar/common/logger"

	"github.com/tarm/serial"
)

const (
	OPEN_SERIAL_DEV_ERROR  = "Unable to open serial port"
	NOT_FOUND_SERIAL_ERROR = "Not found serial port"
	UPLOAD_ACK_ERROR       = "No acknowledgement from the Fisnar"
)

var uploadAck = []byte("ok!")

const ackAttempts = 20

// SerialUploader ships an encoded frame sequence to the Fisnar's serial
// controller, one frame per acknowledgement. It never inspects or mutates
// the program it is given.
type SerialUploader struct {
	name string
	baud int

	port         *serial.Port
	is_connected bool
}

func NewSerialUploader(name string, baud int) *SerialUploader {
	self := new(SerialUploader)
	self.name = name
	self.baud = baud
	return self
}

func (self *SerialUploader) Connect() error {
	if !file.Exists(self.name) {
		return fmt.Errorf("%s %s", NOT_FOUND_SERIAL_ERROR, self.name)
	}

	cfg := &serial.Config{Name: self.name, Baud: self.baud, ReadTimeout: time.Millisecond * 100}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		logger.Errorf("%s %s: %s", OPEN_SERIAL_DEV_ERROR, self.name, err)
		return fmt.Errorf("%s %s: %s", OPEN_SERIAL_DEV_ERROR, self.name, err)
	}
	self.port = port
	self.is_connected = true
	return nil
}

func (self *SerialUploader) Disconnect() {
	if self.port != nil {
		self.port.Close()
	}
	self.port = nil
	self.is_connected = false
}

func (self *SerialUploader) Is_connected() bool {
	return self.is_connected
}

// Upload_frames writes each frame and waits for the controller's ok!
// acknowledgement before sending the next.
func (self *SerialUploader) Upload_frames(frames []Frame) error {
	if !self.is_connected {
		return fmt.Errorf("serial uploader is not connected")
	}
	for i, frame := range frames {
		if _, err := self.port.Write(frame.Encode()); err != nil {
			return fmt.Errorf("write failed at frame %d/%d: %v", i+1, len(frames), err)
		}
		if err := self.readAck(); err != nil {
			return fmt.Errorf("frame %d/%d (%s): %v", i+1, len(frames), frame.Op, err)
		}
	}
	logger.Infof("uploaded %d frames to %s", len(frames), self.name)
	return nil
}

// Upload_program encodes and uploads a converted program.
func (self *SerialUploader) Upload_program(p Program, continuous bool) error {
	return self.Upload_frames(EncodeProgram(p, continuous))
}

func (self *SerialUploader) readAck() error {
	buffer := []byte{}
	raw := make([]byte, 64)
	// tarm/serial reports read timeouts as io.EOF; poll until the attempt
	// budget runs out
	for attempt := 0; attempt < ackAttempts; attempt++ {
		n, _ := self.port.Read(raw)
		if n > 0 {
			buffer = append(buffer, raw[:n]...)
			if bytes.Contains(buffer, uploadAck) {
				return nil
			}
		}
	}
	return fmt.Errorf(UPLOAD_ACK_ERROR)
}
