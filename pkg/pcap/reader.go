// Package pcap turns captured packets into flow events. The flow key is an
// xxhash over the 5-tuple, so the same flow hashes to the same key across
// probe restarts.
package pcap

import (
	"encoding/binary"
	"fmt"
	"log"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	gopcap "github.com/google/gopacket/pcap"

	"WaveBench/internal/model"
)

const (
	snapshotLen int32 = 1600
	promiscuous       = true
)

// Reader reads packets from a pcap file or a live interface.
type Reader struct {
	handle *gopcap.Handle
}

// NewReader creates a new pcap reader for the given file path.
func NewReader(filePath string) (*Reader, error) {
	handle, err := gopcap.OpenOffline(filePath)
	if err != nil {
		return nil, err
	}
	return &Reader{handle: handle}, nil
}

// NewLiveReader opens a network interface for live capture.
func NewLiveReader(interfaceName string) (*Reader, error) {
	handle, err := gopcap.OpenLive(interfaceName, snapshotLen, promiscuous, gopcap.BlockForever)
	if err != nil {
		return nil, err
	}
	return &Reader{handle: handle}, nil
}

// Close closes the pcap handle.
func (r *Reader) Close() {
	r.handle.Close()
}

// ReadEvents reads all packets, converts each to a FlowEvent and calls fn.
// Timestamps are microseconds relative to the first packet, matching the
// trace-replay convention. Unsupported packets are logged and skipped.
func (r *Reader) ReadEvents(fn func(model.FlowEvent)) {
	packetSource := gopacket.NewPacketSource(r.handle, r.handle.LinkType())

	var start time.Time
	first := true
	for packet := range packetSource.Packets() {
		ts := packet.Metadata().Timestamp
		if first {
			start = ts
			first = false
		}

		ev, err := parsePacket(packet, ts.Sub(start))
		if err != nil {
			// Unsupported packet types or corrupt data; keep going.
			log.Printf("Error parsing packet: %v", err)
			continue
		}
		fn(ev)
	}
}

// parsePacket extracts the 5-tuple, hashes it into a FlowKey and builds the
// event. Only IPv4 TCP/UDP packets are supported.
func parsePacket(packet gopacket.Packet, elapsed time.Duration) (model.FlowEvent, error) {
	l := packet.Layer(layers.LayerTypeIPv4)
	if l == nil {
		return model.FlowEvent{}, fmt.Errorf("not an IPv4 packet")
	}
	ip := l.(*layers.IPv4)

	var srcPort, dstPort uint16
	if l := packet.Layer(layers.LayerTypeTCP); l != nil {
		tcp := l.(*layers.TCP)
		srcPort = uint16(tcp.SrcPort)
		dstPort = uint16(tcp.DstPort)
	} else if l := packet.Layer(layers.LayerTypeUDP); l != nil {
		udp := l.(*layers.UDP)
		srcPort = uint16(udp.SrcPort)
		dstPort = uint16(udp.DstPort)
	} else {
		return model.FlowEvent{}, fmt.Errorf("not a TCP or UDP packet")
	}

	return model.FlowEvent{
		TimeUS: uint64(elapsed.Microseconds()),
		Flow:   flowKey(ip.SrcIP, ip.DstIP, srcPort, dstPort, uint8(ip.Protocol)),
		Bytes:  uint32(packet.Metadata().Length),
	}, nil
}

// flowKey hashes the 5-tuple into an opaque flow identifier.
func flowKey(srcIP, dstIP []byte, srcPort, dstPort uint16, proto uint8) model.FlowKey {
	var buf [13]byte
	copy(buf[0:4], srcIP[len(srcIP)-4:])
	copy(buf[4:8], dstIP[len(dstIP)-4:])
	binary.BigEndian.PutUint16(buf[8:10], srcPort)
	binary.BigEndian.PutUint16(buf[10:12], dstPort)
	buf[12] = proto
	return model.FlowKey(xxhash.Sum64(buf[:]))
}
