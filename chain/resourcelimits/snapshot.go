// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcelimits

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gstchain/gstio/chain/name"
	"github.com/gstchain/gstio/utils/wrappers"
)

// snapshotVersion guards the wire format; bump it whenever a section's
// layout changes so a reader can reject a snapshot it cannot interpret
// instead of silently misparsing it.
const snapshotVersion = uint32(1)

// WriteSnapshot serializes store's full state to w as an ordered sequence
// of fixed sections, in the order ResourceLimits, ResourceUsage,
// GasBalance, GasActivation, ResourceState, ResourceConfig.
//
// Row order within a table section is the table's own btree order, so a
// snapshot taken and restored on the same build round-trips byte-for-byte.
func WriteSnapshot(w io.Writer, store *Store) error {
	errs := &wrappers.Errs{}
	errs.Add(writeUint32(w, snapshotVersion))

	writeLimitsSection(w, errs, store.Limits)
	writeUsageSection(w, errs, store.Usage)
	writeGasSection(w, errs, store.Gas)
	writeGasActivationSection(w, errs, store.GasActivation)
	writeStateSection(w, errs, store.State)
	writeConfigSection(w, errs, store.Config)

	return errs.Err
}

// ReadSnapshot reconstructs a Store from a stream written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Store, error) {
	version, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot version: %w", err)
	}
	if version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported snapshot version %d", ErrStateInconsistent, version)
	}

	store := newEmptyStore()

	if err := readLimitsSection(r, store.Limits); err != nil {
		return nil, fmt.Errorf("reading limits section: %w", err)
	}
	if err := readUsageSection(r, store.Usage); err != nil {
		return nil, fmt.Errorf("reading usage section: %w", err)
	}
	if err := readGasSection(r, store.Gas); err != nil {
		return nil, fmt.Errorf("reading gas section: %w", err)
	}
	if err := readGasActivationSection(r, store.GasActivation); err != nil {
		return nil, fmt.Errorf("reading gas activation section: %w", err)
	}
	if store.State, err = readStateSection(r); err != nil {
		return nil, fmt.Errorf("reading state section: %w", err)
	}
	cfg, err := readConfigSection(r)
	if err != nil {
		return nil, fmt.Errorf("reading config section: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating snapshot config: %w", err)
	}
	store.Config = cfg
	return store, nil
}

// --- ResourceConfig section ---

func writeConfigSection(w io.Writer, errs *wrappers.Errs, cfg ResourceConfig) {
	errs.Add(
		writeElasticParams(w, cfg.CPUParams),
		writeElasticParams(w, cfg.NetParams),
		writeUint64(w, cfg.AccountCPUWindow),
		writeUint64(w, cfg.AccountNetWindow),
		writeUint64(w, cfg.GasPerTxToll),
	)
}

func readConfigSection(r io.Reader) (ResourceConfig, error) {
	var cfg ResourceConfig
	var err error
	if cfg.CPUParams, err = readElasticParams(r); err != nil {
		return cfg, err
	}
	if cfg.NetParams, err = readElasticParams(r); err != nil {
		return cfg, err
	}
	if cfg.AccountCPUWindow, err = readUint64(r); err != nil {
		return cfg, err
	}
	if cfg.AccountNetWindow, err = readUint64(r); err != nil {
		return cfg, err
	}
	if cfg.GasPerTxToll, err = readUint64(r); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func writeElasticParams(w io.Writer, p ElasticLimitParameters) error {
	errs := &wrappers.Errs{}
	errs.Add(
		writeUint64(w, p.Target),
		writeUint64(w, p.Max),
		writeUint32(w, p.Periods),
		writeUint32(w, p.MaxMultiplier),
		writeUint64(w, p.ContractRate.Numerator),
		writeUint64(w, p.ContractRate.Denominator),
		writeUint64(w, p.ExpandRate.Numerator),
		writeUint64(w, p.ExpandRate.Denominator),
	)
	return errs.Err
}

func readElasticParams(r io.Reader) (ElasticLimitParameters, error) {
	var p ElasticLimitParameters
	var err error
	if p.Target, err = readUint64(r); err != nil {
		return p, err
	}
	if p.Max, err = readUint64(r); err != nil {
		return p, err
	}
	if p.Periods, err = readUint32(r); err != nil {
		return p, err
	}
	if p.MaxMultiplier, err = readUint32(r); err != nil {
		return p, err
	}
	if p.ContractRate.Numerator, err = readUint64(r); err != nil {
		return p, err
	}
	if p.ContractRate.Denominator, err = readUint64(r); err != nil {
		return p, err
	}
	if p.ExpandRate.Numerator, err = readUint64(r); err != nil {
		return p, err
	}
	if p.ExpandRate.Denominator, err = readUint64(r); err != nil {
		return p, err
	}
	return p, nil
}

// --- ResourceState section ---

func writeStateSection(w io.Writer, errs *wrappers.Errs, s ResourceState) {
	errs.Add(
		writeEMA(w, s.AverageBlockCPUUsage),
		writeEMA(w, s.AverageBlockNetUsage),
		writeUint64(w, s.PendingCPUUsage),
		writeUint64(w, s.PendingNetUsage),
		writeUint64(w, s.TotalCPUWeight),
		writeUint64(w, s.TotalNetWeight),
		writeUint64(w, s.TotalRAMBytes),
		writeUint64(w, s.VirtualCPULimit),
		writeUint64(w, s.VirtualNetLimit),
	)
}

func readStateSection(r io.Reader) (ResourceState, error) {
	var s ResourceState
	var err error
	if s.AverageBlockCPUUsage, err = readEMA(r); err != nil {
		return s, err
	}
	if s.AverageBlockNetUsage, err = readEMA(r); err != nil {
		return s, err
	}
	if s.PendingCPUUsage, err = readUint64(r); err != nil {
		return s, err
	}
	if s.PendingNetUsage, err = readUint64(r); err != nil {
		return s, err
	}
	if s.TotalCPUWeight, err = readUint64(r); err != nil {
		return s, err
	}
	if s.TotalNetWeight, err = readUint64(r); err != nil {
		return s, err
	}
	if s.TotalRAMBytes, err = readUint64(r); err != nil {
		return s, err
	}
	if s.VirtualCPULimit, err = readUint64(r); err != nil {
		return s, err
	}
	if s.VirtualNetLimit, err = readUint64(r); err != nil {
		return s, err
	}
	return s, nil
}

func writeEMA(w io.Writer, e EMA) error {
	errs := &wrappers.Errs{}
	valueBytes := e.ValueEx.Bytes32()
	errs.Add(
		writeUint64(w, e.LastOrdinal),
		writeBytes(w, valueBytes[:]),
		writeUint64(w, e.Consumed),
	)
	return errs.Err
}

func readEMA(r io.Reader) (EMA, error) {
	var e EMA
	var err error
	if e.LastOrdinal, err = readUint64(r); err != nil {
		return e, err
	}
	var buf [32]byte
	if err := readFull(r, buf[:]); err != nil {
		return e, err
	}
	e.ValueEx.SetBytes(buf[:])
	if e.Consumed, err = readUint64(r); err != nil {
		return e, err
	}
	return e, nil
}

// --- per-account table sections ---
//
// Each section is a row count followed by that many rows, written in the
// table's own btree order (see Table.AscendFrom).

func writeLimitsSection(w io.Writer, errs *wrappers.Errs, t *Table[AccountLimits, *AccountLimits]) {
	errs.Add(writeUint32(w, uint32(t.Len())))
	t.AscendFrom(&AccountLimits{}, func(row *AccountLimits) bool {
		errs.Add(
			writeBool(w, row.Pending),
			writeAccount(w, row.Owner),
			writeInt64(w, row.RAMBytes),
			writeInt64(w, row.NetWeight),
			writeInt64(w, row.CPUWeight),
		)
		return errs.Err == nil
	})
}

func readLimitsSection(r io.Reader, t *Table[AccountLimits, *AccountLimits]) error {
	count, err := readUint32(r)
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		row := &AccountLimits{}
		if row.Pending, err = readBool(r); err != nil {
			return err
		}
		if row.Owner, err = readAccount(r); err != nil {
			return err
		}
		if row.RAMBytes, err = readInt64(r); err != nil {
			return err
		}
		if row.NetWeight, err = readInt64(r); err != nil {
			return err
		}
		if row.CPUWeight, err = readInt64(r); err != nil {
			return err
		}
		t.Create(func(dst *AccountLimits) { *dst = *row })
	}
	return nil
}

func writeUsageSection(w io.Writer, errs *wrappers.Errs, t *Table[AccountUsage, *AccountUsage]) {
	errs.Add(writeUint32(w, uint32(t.Len())))
	t.AscendFrom(&AccountUsage{}, func(row *AccountUsage) bool {
		errs.Add(
			writeAccount(w, row.Owner),
			writeEMA(w, row.NetUsage),
			writeEMA(w, row.CPUUsage),
			writeUint64(w, row.RAMUsage),
		)
		return errs.Err == nil
	})
}

func readUsageSection(r io.Reader, t *Table[AccountUsage, *AccountUsage]) error {
	count, err := readUint32(r)
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		row := &AccountUsage{}
		if row.Owner, err = readAccount(r); err != nil {
			return err
		}
		if row.NetUsage, err = readEMA(r); err != nil {
			return err
		}
		if row.CPUUsage, err = readEMA(r); err != nil {
			return err
		}
		if row.RAMUsage, err = readUint64(r); err != nil {
			return err
		}
		t.Create(func(dst *AccountUsage) { *dst = *row })
	}
	return nil
}

func writeGasSection(w io.Writer, errs *wrappers.Errs, t *Table[GasBalance, *GasBalance]) {
	errs.Add(writeUint32(w, uint32(t.Len())))
	t.AscendFrom(&GasBalance{}, func(row *GasBalance) bool {
		errs.Add(
			writeBool(w, row.Pending),
			writeAccount(w, row.Owner),
			writeInt64(w, row.GSTBytes),
			writeUint64(w, row.GSTUsage),
		)
		return errs.Err == nil
	})
}

func readGasSection(r io.Reader, t *Table[GasBalance, *GasBalance]) error {
	count, err := readUint32(r)
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		row := &GasBalance{}
		if row.Pending, err = readBool(r); err != nil {
			return err
		}
		if row.Owner, err = readAccount(r); err != nil {
			return err
		}
		if row.GSTBytes, err = readInt64(r); err != nil {
			return err
		}
		if row.GSTUsage, err = readUint64(r); err != nil {
			return err
		}
		t.Create(func(dst *GasBalance) { *dst = *row })
	}
	return nil
}

func writeGasActivationSection(w io.Writer, errs *wrappers.Errs, t *Table[GasActivation, *GasActivation]) {
	errs.Add(writeUint32(w, uint32(t.Len())))
	t.AscendFrom(&GasActivation{}, func(row *GasActivation) bool {
		errs.Add(
			writeBool(w, row.Pending),
			writeAccount(w, row.Owner),
			writeBool(w, row.IsActivation),
		)
		return errs.Err == nil
	})
}

func readGasActivationSection(r io.Reader, t *Table[GasActivation, *GasActivation]) error {
	count, err := readUint32(r)
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		row := &GasActivation{}
		if row.Pending, err = readBool(r); err != nil {
			return err
		}
		if row.Owner, err = readAccount(r); err != nil {
			return err
		}
		if row.IsActivation, err = readBool(r); err != nil {
			return err
		}
		t.Create(func(dst *GasActivation) { *dst = *row })
	}
	return nil
}

// --- primitive field codecs ---
//
// These intentionally avoid reflection-based encoding: a snapshot's layout
// is fixed and small, and a direct, hand-rolled reader/writer pair is
// easier to verify field-by-field than a reflection path.

func writeUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return writeBytes(w, buf[:])
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return writeBytes(w, buf[:])
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func writeInt64(w io.Writer, v int64) error {
	return writeUint64(w, uint64(v))
}

func readInt64(r io.Reader) (int64, error) {
	v, err := readUint64(r)
	return int64(v), err
}

func writeBool(w io.Writer, v bool) error {
	var b [1]byte
	if v {
		b[0] = 1
	}
	return writeBytes(w, b[:])
}

func readBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if err := readFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

func writeAccount(w io.Writer, a name.Account) error {
	s := a.String()
	if len(s) > 255 {
		return fmt.Errorf("%w: account name too long to encode", ErrStateInconsistent)
	}
	errs := &wrappers.Errs{}
	errs.Add(
		writeBytes(w, []byte{byte(len(s))}),
		writeBytes(w, []byte(s)),
	)
	return errs.Err
}

func readAccount(r io.Reader) (name.Account, error) {
	var lenBuf [1]byte
	if err := readFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	buf := make([]byte, lenBuf[0])
	if err := readFull(r, buf); err != nil {
		return "", err
	}
	return name.Parse(string(buf))
}

func writeBytes(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}

func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}
