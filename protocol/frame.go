package protocol

// frameReader splits a byte stream into frames, dropping bytes up to the
// next sync byte whenever a frame fails to check
type frameReader struct {
	synced bool

	// checkDest restricts accepted sequence bytes to the host-to-board range
	checkDest bool
}

// scan passes every complete frame in data to fn and returns the number of
// bytes consumed. resync runs each time the reader regains sync.
func (r *frameReader) scan(data []byte, fn func(seq uint8, payload []byte), resync func()) int {
	total := len(data)
	for len(data) > 0 {
		if !r.synced {
			i := indexSync(data)
			if i < 0 {
				data = nil
				break
			}
			data = data[i+1:]
			r.synced = true
			if resync != nil {
				resync()
			}
			continue
		}
		if data[0] == SyncByte {
			data = data[1:]
			continue
		}
		if len(data) < FrameMin {
			break
		}
		n := int(data[posLen])
		seq := data[posSeq]
		if n < FrameMin || n > FrameMax || (r.checkDest && seq&^SeqMask != SeqDest) {
			r.synced = false
			continue
		}
		if len(data) < n {
			break
		}
		crc := uint16(data[n-3])<<8 | uint16(data[n-2])
		if data[n-1] != SyncByte || crc != CRC16(data[:n-TrailerSize]) {
			r.synced = false
			continue
		}
		payload := data[HeaderSize : n-TrailerSize]
		data = data[n:]
		fn(seq, payload)
	}
	return total - len(data)
}

func indexSync(data []byte) int {
	for i, b := range data {
		if b == SyncByte {
			return i
		}
	}
	return -1
}

// encodeFrame builds a complete frame in out. body writes the payload.
func encodeFrame(out *ScratchOutput, seq uint8, body func(OutputBuffer)) ([]byte, error) {
	out.Reset()
	out.Output([]byte{0, seq})
	if body != nil {
		body(out)
	}
	n := out.CurPosition() + TrailerSize
	if n > FrameMax {
		return nil, ErrFrameTooLong
	}
	out.Update(posLen, uint8(n))
	crc := CRC16(out.Result())
	out.Output([]byte{uint8(crc >> 8), uint8(crc), SyncByte})
	return out.Result(), nil
}
