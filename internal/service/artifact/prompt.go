package artifact

import "fmt"

const systemPrompt = "Sei un assistente legale e amministrativo professionale. " +
	"Rispondi SEMPRE in LINGUA ITALIANA e usa il formato JSON richiesto. " +
	"Non inventare mai nomi, date, importi o altri fatti assenti dal contenuto: " +
	"quando un dato manca usa il segnaposto [N/D]."

const artifactTemplate = `Analizza la seguente nota/evento di lavoro e genera gli artefatti strutturati in LINGUA ITALIANA.

Rispondi con un oggetto JSON con esattamente queste chiavi:
- "summary" (stringa)
- "minutes" (stringa in markdown)
- "actionItems" (array di stringhe)
- "emailDraft" (oggetto con "subject" e "body", oppure assente)

REGOLE PER "summary":
Il sommario e' valido solo se contiene almeno 2 frasi complete E almeno un fatto, una decisione o un'azione concreta ricavabile dal contenuto.
Se non e' possibile scrivere un sommario valido, "summary" deve essere la stringa vuota "" e "emailDraft" NON deve essere presente.

STRUTTURA OBBLIGATORIA DI "minutes" (markdown):
## Contesto
## Punti chiave (massimo 6 punti elenco)
## Decisioni
## Azioni concordate
## Rischi
## Prossimi passi (massimo 3 punti elenco)

FORMATO OBBLIGATORIO DI OGNI "actionItems" (massimo 7 elementi):
"[ACTION] -- Owner: [N/A] -- Due: [N/A] -- Priority: [L/M/H]"

VINCOLI DI "emailDraft" (solo se "summary" e' valido):
- "subject" al massimo 70 caratteri
- "body" tra 120 e 180 parole, con saluto, contesto, punti concordati, prossimi passi e chiusura cordiale
- usa segnaposto come [Nome], [Data], [Importo] per ogni dato identificativo mancante

CONTENUTO DA ANALIZZARE:
%s

Rispondi esclusivamente con l'oggetto JSON.`

const draftTemplate = `Genera una bozza di email professionale in LINGUA ITALIANA basata sul seguente punto d'azione:
%q

L'email deve essere breve, cortese e pronta da inviare. Usa segnaposto come [Nome] o [Data] per i dati mancanti.
Rispondi esclusivamente in formato JSON con i campi:
{ "subject": "Oggetto dell'email", "body": "Corpo dell'email" }`

func artifactPrompt(content string) string {
	return fmt.Sprintf(artifactTemplate, content)
}

func draftPrompt(actionItem string) string {
	return fmt.Sprintf(draftTemplate, actionItem)
}
