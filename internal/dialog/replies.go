package dialog

import (
	"fmt"
	"strings"

	"recolhe/pkg/model"
	"recolhe/pkg/sanitizer"
)

// Reply texts sent back to the sender. All user-facing copy is pt-BR.
const (
	replyAskName    = "Ótimo! Para agendar a coleta, por favor, me diga seu nome completo."
	replyAskAddress = "Obrigado! Agora, por favor, me informe o endereço completo para a coleta."
	replyHandoff    = "Por favor, aguarde. Em breve um de nossos atendentes irá te ajudar."
	replyInvalid    = "Opção inválida. Por favor, digite 1 para agendar uma coleta ou 2 para outro assunto."
	replyAskLiters  = "Período anotado. Para finalizar, quantos litros de óleo você deseja coletar?"
	replyNoSlots    = "Desculpe, não há vagas de coleta disponíveis no momento. Por favor, tente novamente mais tarde."
	replyCancelled  = "Agendamento cancelado. Comece de novo a qualquer momento."
	replyRetrySave  = "Desculpe, tivemos um problema ao salvar seu agendamento. Por favor, envie novamente a quantidade de litros."
)

func replyGreeting(senderName string) string {
	greeting := "Olá, tudo bem?"
	if name := sanitizer.TrimAndNormalize(senderName); name != "" {
		greeting = fmt.Sprintf("Olá %s, tudo bem?", name)
	}
	return greeting + "\n\nDigite o número da opção desejada:\n1. Agendar coleta\n2. Outro assunto"
}

func replyRestart() string {
	return "Desculpe, algo deu errado. Vamos recomeçar.\n\nDigite o número da opção desejada:\n1. Agendar coleta\n2. Outro assunto"
}

func replyAskDay(weekdayNames []string) string {
	var b strings.Builder
	b.WriteString("Endereço anotado. Agora escolha um dos dias para a coleta:")
	for _, name := range weekdayNames {
		b.WriteString("\n- ")
		b.WriteString(sanitizer.Capitalize(name))
	}
	return b.String()
}

func replyInvalidDay(weekdayNames []string) string {
	capitalized := make([]string, len(weekdayNames))
	for i, name := range weekdayNames {
		capitalized[i] = sanitizer.Capitalize(name)
	}
	last := len(capitalized) - 1
	listed := strings.Join(capitalized[:last], ", ") + " ou " + capitalized[last]
	return "Dia inválido. Por favor, escolha um dos dias disponíveis: " + listed + "."
}

func replySlotFound(slot *model.Slot, periods []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ótimo! Conseguimos um horário para *%s-feira (%s)*.", sanitizer.Capitalize(slot.WeekdayName), friendlyDate(slot.Date))
	b.WriteString("\n\nAgora, por favor, escolha o período:")
	for _, period := range periods {
		b.WriteString("\n- ")
		b.WriteString(sanitizer.Capitalize(period))
	}
	return b.String()
}

func replyInvalidPeriod(periods []string) string {
	capitalized := make([]string, len(periods))
	for i, period := range periods {
		capitalized[i] = sanitizer.Capitalize(period)
	}
	last := len(capitalized) - 1
	listed := strings.Join(capitalized[:last], ", ") + " ou " + capitalized[last]
	return "Período inválido. Por favor, escolha um dos períodos disponíveis: " + listed + "."
}

func replyConfirmation(appointment model.Appointment, weekdayName, date string) string {
	return fmt.Sprintf(
		"*Agendamento de Coleta Confirmado* ✅\n\n*Nome:* %s\n*Endereço:* %s\n*Dia da Coleta:* %s-feira (%s)\n*Período:* %s\n*Quantidade:* %s litros\n\nObrigado por agendar conosco!",
		appointment.Name,
		appointment.Address,
		sanitizer.Capitalize(weekdayName),
		friendlyDate(date),
		appointment.Period,
		appointment.Liters,
	)
}

// friendlyDate turns 2025-06-09 into 09/06/2025.
func friendlyDate(date string) string {
	parts := strings.SplitN(date, "-", 3)
	if len(parts) != 3 {
		return date
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}
