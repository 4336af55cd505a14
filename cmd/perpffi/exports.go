package main

/*
#include <stddef.h>
#include <stdint.h>

typedef struct {
	const uint8_t *key;
	uint8_t *data;
	size_t data_len;
} perp_account_ref;

typedef struct {
	const perp_account_ref *spot_markets;
	size_t spot_markets_len;
	const perp_account_ref *perp_markets;
	size_t perp_markets_len;
	const perp_account_ref *oracles;
	size_t oracles_len;
	uint64_t latest_slot;
	const uint8_t *oracle_guard_rails;
} perp_accounts_list;
*/
import "C"

import (
	"unsafe"

	"PerpFFI/internal/abi"
	"PerpFFI/internal/account"
	"PerpFFI/internal/core"
	"PerpFFI/internal/errcode"
	"PerpFFI/internal/margin"
	"PerpFFI/internal/state"
)

// bytesOf views C memory as a slice without copying.
func bytesOf(p *C.uint8_t, n C.size_t) []byte {
	if p == nil || n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), int(n))
}

func refOf(r *C.perp_account_ref) (account.Ref, error) {
	if r == nil || r.key == nil {
		return account.Ref{}, errcode.Wrap(errcode.NullPointer, "account ref without key")
	}
	var ref account.Ref
	copy(ref.Key[:], unsafe.Slice((*byte)(unsafe.Pointer(r.key)), len(ref.Key)))
	ref.Data = bytesOf(r.data, r.data_len)
	return ref, nil
}

func refsOf(p *C.perp_account_ref, n C.size_t) ([]account.Ref, error) {
	if n == 0 {
		return nil, nil
	}
	if p == nil {
		return nil, errcode.Wrap(errcode.NullPointer, "%d account refs at null", int(n))
	}
	raw := unsafe.Slice(p, int(n))
	out := make([]account.Ref, len(raw))
	for i := range raw {
		ref, err := refOf(&raw[i])
		if err != nil {
			return nil, err
		}
		out[i] = ref
	}
	return out, nil
}

// accountsOf converts the C accounts list. Null guard rails select the
// defaults.
func accountsOf(list *C.perp_accounts_list) (core.AccountsList, error) {
	if list == nil {
		return core.AccountsList{}, errcode.Wrap(errcode.NullPointer, "accounts list")
	}
	spot, err := refsOf(list.spot_markets, list.spot_markets_len)
	if err != nil {
		return core.AccountsList{}, err
	}
	perp, err := refsOf(list.perp_markets, list.perp_markets_len)
	if err != nil {
		return core.AccountsList{}, err
	}
	oracles, err := refsOf(list.oracles, list.oracles_len)
	if err != nil {
		return core.AccountsList{}, err
	}

	rails := state.DefaultOracleGuardRails()
	if list.oracle_guard_rails != nil {
		p, err := account.Cast[state.OracleGuardRails](bytesOf(list.oracle_guard_rails, state.OracleGuardRailsSize))
		if err != nil {
			return core.AccountsList{}, err
		}
		rails = *p
	}

	return core.AccountsList{
		SpotMarkets:      spot,
		PerpMarkets:      perp,
		Oracles:          oracles,
		LatestSlot:       uint64(list.latest_slot),
		OracleGuardRails: rails,
	}, nil
}

// write encodes r into out and returns its tag, or -1 if out is too small.
func write[T any](out *C.uint8_t, outLen C.size_t, r abi.Result[T], payload int, put abi.PutFunc[T]) C.int {
	if _, err := abi.EncodeResult(bytesOf(out, outLen), r, payload, put); err != nil {
		return -1
	}
	return C.int(r.Tag)
}

// recoverInto turns a panic into an Internal error result.
func recoverInto(out *C.uint8_t, outLen C.size_t, rc *C.int) {
	v := recover()
	if v == nil {
		return
	}
	lib.logger.Error().Interface("panic", v).Msg("recovered panic at export boundary")
	*rc = write(out, outLen, abi.Err[struct{}](errcode.Internal), 0, nil)
}

func u128(lo, hi C.uint64_t) abi.U128 { return abi.U128{Lo: uint64(lo), Hi: uint64(hi)} }

//export oracle_get_oracle_price
func oracle_get_oracle_price(source C.uint8_t, ref *C.perp_account_ref, slot C.uint64_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	r, err := refOf(ref)
	if err != nil {
		return write(out, outLen, abi.ToResult(abi.OraclePriceData{}, err), abi.OraclePriceDataSize, abi.PutOraclePriceData)
	}
	res := lib.bridge.OracleGetOraclePrice(state.OracleSource(source), r, uint64(slot))
	return write(out, outLen, res, abi.OraclePriceDataSize, abi.PutOraclePriceData)
}

//export math_calculate_auction_price
func math_calculate_auction_price(order *C.uint8_t, orderLen C.size_t, slot, tickSize C.uint64_t, oraclePriceTag C.uint8_t, oraclePrice C.int64_t, isPredictionMarket C.uint8_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	price, err := abi.OptionFromTag(uint8(oraclePriceTag), int64(oraclePrice))
	if err != nil {
		return write(out, outLen, abi.ToResult(uint64(0), err), abi.U64Size, abi.PutU64)
	}
	res := lib.bridge.MathCalculateAuctionPrice(bytesOf(order, orderLen), uint64(slot), uint64(tickSize), price, isPredictionMarket != 0)
	return write(out, outLen, res, abi.U64Size, abi.PutU64)
}

//export math_calculate_margin_requirement_and_total_collateral_and_liability_info
func math_calculate_margin_requirement_and_total_collateral_and_liability_info(user *C.uint8_t, userLen C.size_t, accounts *C.perp_accounts_list, contextKind, customType C.uint8_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	list, err := accountsOf(accounts)
	if err != nil {
		return write(out, outLen, abi.ToResult(abi.MarginCalculation{}, err), abi.MarginCalculationSize, abi.PutMarginCalculation)
	}
	mode := margin.ContextMode{Kind: margin.ContextKind(contextKind), Custom: state.MarginRequirementType(customType)}
	res := lib.bridge.MathCalculateMarginRequirementAndTotalCollateralAndLiabilityInfo(bytesOf(user, userLen), list, mode)
	return write(out, outLen, res, abi.MarginCalculationSize, abi.PutMarginCalculation)
}

//export orders_place_perp_order
func orders_place_perp_order(user *C.uint8_t, userLen C.size_t, st *C.uint8_t, stLen C.size_t, params *C.uint8_t, paramsLen C.size_t, accounts *C.perp_accounts_list, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	list, err := accountsOf(accounts)
	if err != nil {
		return write(out, outLen, abi.ToResult(false, err), abi.BoolSize, abi.PutBool)
	}
	res := lib.bridge.OrdersPlacePerpOrder(bytesOf(user, userLen), bytesOf(st, stLen), bytesOf(params, paramsLen), list)
	return write(out, outLen, res, abi.BoolSize, abi.PutBool)
}

//export order_is_limit_order
func order_is_limit_order(order *C.uint8_t, orderLen C.size_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	return write(out, outLen, lib.bridge.OrderIsLimitOrder(bytesOf(order, orderLen)), abi.BoolSize, abi.PutBool)
}

//export order_is_resting_limit_order
func order_is_resting_limit_order(order *C.uint8_t, orderLen C.size_t, slot C.uint64_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	return write(out, outLen, lib.bridge.OrderIsRestingLimitOrder(bytesOf(order, orderLen), uint64(slot)), abi.BoolSize, abi.PutBool)
}

//export perp_market_get_margin_ratio
func perp_market_get_margin_ratio(market *C.uint8_t, marketLen C.size_t, sizeLo, sizeHi C.uint64_t, marginType, highLeverage C.uint8_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	res := lib.bridge.PerpMarketGetMarginRatio(bytesOf(market, marketLen), u128(sizeLo, sizeHi), state.MarginRequirementType(marginType), highLeverage != 0)
	return write(out, outLen, res, abi.U32Size, abi.PutU32)
}

//export perp_market_get_open_interest
func perp_market_get_open_interest(market *C.uint8_t, marketLen C.size_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	return write(out, outLen, lib.bridge.PerpMarketGetOpenInterest(bytesOf(market, marketLen)), abi.Int128Size, abi.PutU128)
}

//export perp_position_get_unrealized_pnl
func perp_position_get_unrealized_pnl(pos *C.uint8_t, posLen C.size_t, oraclePrice C.int64_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	res := lib.bridge.PerpPositionGetUnrealizedPnl(bytesOf(pos, posLen), int64(oraclePrice))
	return write(out, outLen, res, abi.Int128Size, abi.PutI128)
}

//export perp_position_is_available
func perp_position_is_available(pos *C.uint8_t, posLen C.size_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	return write(out, outLen, lib.bridge.PerpPositionIsAvailable(bytesOf(pos, posLen)), abi.BoolSize, abi.PutBool)
}

//export perp_position_is_open_position
func perp_position_is_open_position(pos *C.uint8_t, posLen C.size_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	return write(out, outLen, lib.bridge.PerpPositionIsOpenPosition(bytesOf(pos, posLen)), abi.BoolSize, abi.PutBool)
}

//export perp_position_worst_case_base_asset_amount
func perp_position_worst_case_base_asset_amount(pos *C.uint8_t, posLen C.size_t, oraclePrice C.int64_t, contractType C.uint8_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	res := lib.bridge.PerpPositionWorstCaseBaseAssetAmount(bytesOf(pos, posLen), int64(oraclePrice), state.ContractType(contractType))
	return write(out, outLen, res, abi.Int128Size, abi.PutI128)
}

//export perp_position_simulate_settled_lp_position
func perp_position_simulate_settled_lp_position(pos *C.uint8_t, posLen C.size_t, market *C.uint8_t, marketLen C.size_t, oraclePrice C.int64_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	res := lib.bridge.PerpPositionSimulateSettledLpPosition(bytesOf(pos, posLen), bytesOf(market, marketLen), int64(oraclePrice))
	return write(out, outLen, res, abi.PerpPositionSize, abi.PutPerpPosition)
}

//export spot_market_get_asset_weight
func spot_market_get_asset_weight(market *C.uint8_t, marketLen C.size_t, sizeLo, sizeHi C.uint64_t, oraclePrice C.int64_t, marginType C.uint8_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	res := lib.bridge.SpotMarketGetAssetWeight(bytesOf(market, marketLen), u128(sizeLo, sizeHi), int64(oraclePrice), state.MarginRequirementType(marginType))
	return write(out, outLen, res, abi.U32Size, abi.PutU32)
}

//export spot_market_get_liability_weight
func spot_market_get_liability_weight(market *C.uint8_t, marketLen C.size_t, sizeLo, sizeHi C.uint64_t, marginType C.uint8_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	res := lib.bridge.SpotMarketGetLiabilityWeight(bytesOf(market, marketLen), u128(sizeLo, sizeHi), state.MarginRequirementType(marginType))
	return write(out, outLen, res, abi.U32Size, abi.PutU32)
}

//export spot_market_get_margin_ratio
func spot_market_get_margin_ratio(market *C.uint8_t, marketLen C.size_t, marginType C.uint8_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	res := lib.bridge.SpotMarketGetMarginRatio(bytesOf(market, marketLen), state.MarginRequirementType(marginType))
	return write(out, outLen, res, abi.U32Size, abi.PutU32)
}

//export spot_position_is_available
func spot_position_is_available(pos *C.uint8_t, posLen C.size_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	return write(out, outLen, lib.bridge.SpotPositionIsAvailable(bytesOf(pos, posLen)), abi.BoolSize, abi.PutBool)
}

//export spot_position_get_signed_token_amount
func spot_position_get_signed_token_amount(pos *C.uint8_t, posLen C.size_t, market *C.uint8_t, marketLen C.size_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	res := lib.bridge.SpotPositionGetSignedTokenAmount(bytesOf(pos, posLen), bytesOf(market, marketLen))
	return write(out, outLen, res, abi.Int128Size, abi.PutI128)
}

//export spot_position_get_token_amount
func spot_position_get_token_amount(pos *C.uint8_t, posLen C.size_t, market *C.uint8_t, marketLen C.size_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	res := lib.bridge.SpotPositionGetTokenAmount(bytesOf(pos, posLen), bytesOf(market, marketLen))
	return write(out, outLen, res, abi.Int128Size, abi.PutU128)
}

//export user_get_spot_position
func user_get_spot_position(user *C.uint8_t, userLen C.size_t, marketIndex C.uint16_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	res := lib.bridge.UserGetSpotPosition(bytesOf(user, userLen), uint16(marketIndex))
	return write(out, outLen, res, abi.PointerSize, abi.PutPointer)
}

//export user_get_perp_position
func user_get_perp_position(user *C.uint8_t, userLen C.size_t, marketIndex C.uint16_t, out *C.uint8_t, outLen C.size_t) (rc C.int) {
	defer recoverInto(out, outLen, &rc)
	res := lib.bridge.UserGetPerpPosition(bytesOf(user, userLen), uint16(marketIndex))
	return write(out, outLen, res, abi.PointerSize, abi.PutPointer)
}

// perpffi_result_size is the out buffer size a result of kind needs, or -1
// for an unknown kind.
//
//export perpffi_result_size
func perpffi_result_size(kind C.uint32_t) C.int64_t {
	n := abi.PayloadSize(abi.Kind(kind))
	if n < 0 {
		return -1
	}
	return C.int64_t(abi.ResultSize(n))
}

// perpffi_metrics_text returns the length of the metrics text exposition
// and writes it into out when out is non-null and at least that long. A
// null out queries the length. 0 means metrics are off, -1 that gathering
// failed.
//
//export perpffi_metrics_text
func perpffi_metrics_text(out *C.uint8_t, outLen C.size_t) (n C.int64_t) {
	defer func() {
		if v := recover(); v != nil {
			lib.logger.Error().Interface("panic", v).Msg("recovered panic at export boundary")
			n = -1
		}
	}()
	text, err := lib.metricsText()
	if err != nil {
		return -1
	}
	if !copyText(bytesOf(out, outLen), text) {
		lib.logger.Debug().Int("len", len(text)).Msg("metrics text not written")
	}
	return C.int64_t(len(text))
}
