package response

// Matchers for every table kind. Each returns a Matcher publishing rows on topic.

func TradeMatcher(topic Publisher[Row[Trade]]) Matcher {
	return Register("trade", tableIs(TableTrade), tableRows[Trade], topic)
}

func TradeBinMatcher(topic Publisher[Row[TradeBin]]) Matcher {
	return Register("tradeBin", tableHasPrefix(TableTradeBin), tableRows[TradeBin], topic)
}

func BookMatcher(topic Publisher[Row[BookLevel]]) Matcher {
	return Register("book", tableIs(TableBook, TableBook25), tableRows[BookLevel], topic)
}

func QuoteMatcher(topic Publisher[Row[Quote]]) Matcher {
	return Register("quote", tableIs(TableQuote), tableRows[Quote], topic)
}

func LiquidationMatcher(topic Publisher[Row[Liquidation]]) Matcher {
	return Register("liquidation", tableIs(TableLiquidation), tableRows[Liquidation], topic)
}

func PositionMatcher(topic Publisher[Row[Position]]) Matcher {
	return Register("position", tableIs(TablePosition), tableRows[Position], topic)
}

func MarginMatcher(topic Publisher[Row[Margin]]) Matcher {
	return Register("margin", tableIs(TableMargin), tableRows[Margin], topic)
}

func OrderMatcher(topic Publisher[Row[Order]]) Matcher {
	return Register("order", tableIs(TableOrder), tableRows[Order], topic)
}

func WalletMatcher(topic Publisher[Row[Wallet]]) Matcher {
	return Register("wallet", tableIs(TableWallet), tableRows[Wallet], topic)
}

func InstrumentMatcher(topic Publisher[Row[Instrument]]) Matcher {
	return Register("instrument", tableIs(TableInstrument), tableRows[Instrument], topic)
}

func ExecutionMatcher(topic Publisher[Row[Execution]]) Matcher {
	return Register("execution", tableIs(TableExecution), tableRows[Execution], topic)
}

func FundingMatcher(topic Publisher[Row[Funding]]) Matcher {
	return Register("funding", tableIs(TableFunding), tableRows[Funding], topic)
}

// Control responses.

func ErrorMatcher(topic Publisher[ErrorResponse]) Matcher {
	return Register("error", func(env *Envelope) bool {
		return env.Has(fieldError)
	}, decodeOne[ErrorResponse], topic)
}

func SubscribeMatcher(topic Publisher[SubscribeResponse]) Matcher {
	return Register("subscribe", func(env *Envelope) bool {
		return env.Has(fieldSubscribe) || env.Has(fieldUnsubscribe)
	}, decodeOne[SubscribeResponse], topic)
}

func InfoMatcher(topic Publisher[InfoResponse]) Matcher {
	return Register("info", func(env *Envelope) bool {
		return env.Has(fieldInfo) && env.Has(fieldVersion)
	}, decodeOne[InfoResponse], topic)
}

// AuthenticationMatcher claims acks whose echoed request op is an auth op.
func AuthenticationMatcher(topic Publisher[AuthenticationResponse]) Matcher {
	return Register("authentication", func(env *Envelope) bool {
		if env.Has(fieldError) || !env.Has(fieldRequest) {
			return false
		}
		var echo RequestEcho
		if err := env.Decode(fieldRequest, &echo); err != nil {
			return false
		}
		return echo.Op == OpAuthKeyExpires || echo.Op == OpAuthKey
	}, decodeOne[AuthenticationResponse], topic)
}

func PongMatcher(topic Publisher[PongResponse]) RawMatcher {
	return RegisterRaw("pong", func(text string) bool {
		return text == PongText
	}, func(text string) (PongResponse, error) {
		return PongResponse{Message: text}, nil
	}, topic)
}

const (
	OpAuthKeyExpires = "authKeyExpires"
	OpAuthKey        = "authKey"
)
