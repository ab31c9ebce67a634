// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package print

import (
	"context"
	"errors"
	"time"

	"github.com/google/gousb"
)

// ZebraVendorID is Zebra Technologies' USB vendor id.
const ZebraVendorID = 0x0A5F

// A USBPrinter is a printer on a vendor-specific USB bulk interface.
// Status queries work when the interface exposes a bulk IN endpoint;
// otherwise QueryRaw reports a USB error.
type USBPrinter struct {
	ctx    *gousb.Context
	dev    *gousb.Device
	intf   *gousb.Interface
	done   func()
	out    *gousb.OutEndpoint
	in     *gousb.InEndpoint
	config Config
}

// OpenUSB finds and claims the first device matching the vendor and
// product ids. Pass product id 0 to accept any product from the vendor.
func OpenUSB(vendorID, productID uint16, config Config) (*USBPrinter, error) {
	ctx := gousb.NewContext()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if desc.Vendor != gousb.ID(vendorID) {
			return false
		}
		return productID == 0 || desc.Product == gousb.ID(productID)
	})
	if err != nil && len(devs) == 0 {
		ctx.Close()
		return nil, &Error{Kind: KindUSBError, Details: err.Error(), cause: err}
	}
	if len(devs) == 0 {
		ctx.Close()
		return nil, &Error{Kind: KindUSBNotFound}
	}
	dev := devs[0]
	for _, extra := range devs[1:] {
		extra.Close()
	}

	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		ctx.Close()
		return nil, &Error{Kind: KindUSBError, Details: err.Error(), cause: err}
	}

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, &Error{Kind: KindUSBError, Details: err.Error(), cause: err}
	}

	p := &USBPrinter{ctx: ctx, dev: dev, intf: intf, done: done, config: config}
	for _, ep := range intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch ep.Direction {
		case gousb.EndpointDirectionOut:
			if p.out == nil {
				p.out, err = intf.OutEndpoint(ep.Number)
			}
		case gousb.EndpointDirectionIn:
			if p.in == nil {
				p.in, err = intf.InEndpoint(ep.Number)
			}
		}
		if err != nil {
			p.Close()
			return nil, &Error{Kind: KindUSBError, Details: err.Error(), cause: err}
		}
	}
	if p.out == nil {
		p.Close()
		return nil, &Error{Kind: KindUSBError, Details: "device has no bulk OUT endpoint"}
	}
	return p, nil
}

// OpenZebraUSB claims the first Zebra printer on the bus.
func OpenZebraUSB(config Config) (*USBPrinter, error) {
	return OpenUSB(ZebraVendorID, 0, config)
}

// Close releases the interface, device, and context.
func (p *USBPrinter) Close() error {
	if p.done != nil {
		p.done()
		p.done = nil
	}
	if p.dev != nil {
		p.dev.Close()
		p.dev = nil
	}
	if p.ctx != nil {
		p.ctx.Close()
		p.ctx = nil
	}
	return nil
}

// SendRaw writes all bytes to the bulk OUT endpoint under the write
// timeout.
func (p *USBPrinter) SendRaw(data []byte) error {
	if p.config.TraceIO {
		traceBytes("usb tx", data)
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.config.Timeouts.Write)
	defer cancel()
	written := 0
	for written < len(data) {
		n, err := p.out.WriteContext(ctx, data[written:])
		if err != nil {
			return errWriteFailed(err)
		}
		written += n
	}
	return nil
}

// QueryRaw writes cmd and reads its framed response from the bulk IN
// endpoint.
func (p *USBPrinter) QueryRaw(cmd []byte) ([][]byte, error) {
	if p.in == nil {
		return nil, &Error{Kind: KindUSBError, Details: "device has no bulk IN endpoint"}
	}
	if err := p.SendRaw(cmd); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.config.Timeouts.Read)
	defer cancel()
	frames, err := ReadFrames(usbReader{p.in, ctx}, ExpectedFrameCount(cmd),
		p.config.Timeouts.Read, DefaultMaxFrameSize)
	if err != nil {
		return nil, err
	}
	if p.config.TraceIO {
		for _, f := range frames {
			traceBytes("usb rx", f)
		}
	}
	return frames, nil
}

// usbReader adapts the IN endpoint to io.Reader with a bounded context.
type usbReader struct {
	in  *gousb.InEndpoint
	ctx context.Context
}

func (r usbReader) Read(buf []byte) (int, error) {
	ctx, cancel := context.WithTimeout(r.ctx, 250*time.Millisecond)
	defer cancel()
	n, err := r.in.ReadContext(ctx, buf)
	if errors.Is(err, context.DeadlineExceeded) {
		// Present a would-block condition; the frame reader owns the
		// overall deadline.
		return n, nil
	}
	return n, err
}
