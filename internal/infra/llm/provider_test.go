package llm

// Compile-time checks that all adapters satisfy LLMProvider.
var (
	_ LLMProvider = (*OllamaProvider)(nil)
	_ LLMProvider = (*AnthropicProvider)(nil)
)
