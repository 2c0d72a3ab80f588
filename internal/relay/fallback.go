package relay

import "strings"

// jokeTrigger selects the easter-egg reply. It is the only content-based
// branch in the fallback path.
const jokeTrigger = "piada"

// FallbackFor produces the canned reply used when every endpoint has failed.
// It never fails and is deterministic for a given message: the same input
// always yields byte-identical output, so the chat UI always has something
// renderable even with every webhook down.
func FallbackFor(message string) []Reply {
	if strings.Contains(strings.ToLower(message), jokeTrigger) {
		return []Reply{
			{
				Messages: []ReplyItem{
					{Message: "Claro! Aqui vai uma piada:", TypeMessage: KindText},
					{Message: "Por que o computador foi ao médico?", TypeMessage: KindText},
					{Message: "Porque ele estava com um vírus!", TypeMessage: KindText},
				},
			},
		}
	}

	return []Reply{
		{Message: "Obrigado por entrar em contato. Entendi sua solicitação!", TypeMessage: KindText},
		{Message: "Posso te ajudar com mais informações sobre nossos serviços.", TypeMessage: KindText},
		{Message: "Quer agendar uma demonstração?", TypeMessage: KindText},
	}
}
