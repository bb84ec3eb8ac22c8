package prompttune

// Prompts sent to the chat model while tuning. {task}, {domain}, {persona},
// {sample_task}, {entity_types}, {language} and {input_text} are filled before
// the call; the {tuple_delimiter} family is shown to the model verbatim so the
// generated examples keep those placeholders for the indexing pipeline.

// defaultTask seeds persona and entity type generation when the caller does
// not provide one.
const defaultTask = "Identify the relations and structure of the community of interest, specifically within the {domain} domain."

const generateDomainPrompt = `You are an intelligent assistant that helps a human to analyze the information in a text document.
Given a sample text, help the user by assigning a descriptive domain that summarizes what the text is about.
Example domains are: "Social studies", "Algorithmic analysis", "Medical science", among others.

Text: {input_text}
Domain:`

const generatePersonaPrompt = `You are an intelligent assistant that helps a human to analyze the information in a text document.
Given a specific type of task and sample text, help the user by generating a 3 to 4 sentence description of an expert who could help solve the problem.
Use a format similar to the following:
You are an expert {role}. You are skilled at {relevant skills}. You are adept at helping people with {specific task}.

task: {sample_task}
persona description:`

const detectLanguagePrompt = `You are an intelligent assistant that helps a human to analyze the information in a text document.
Given a sample text, help the user by determining what's the primary language of the provided texts.
Examples are: "English", "Spanish", "Japanese", "Portuguese", among others.

Text: {input_text}
Language:`

const entityTypesPromptHeader = `The goal is to study the connections and relations between the entity types and their features in order to understand all available information from the text.
The user's task is to {task}.
As part of the analysis, you want to identify the entity types present in the following text.
The entity types must be relevant to the user task.
Avoid general entity types such as "other" or "unknown".
This is VERY IMPORTANT: Do not generate redundant or overlapping entity types. For example, if the text contains "company" and "organization" entity types, you should return only one of them.
Don't worry about quantity, always choose quality over quantity. And make sure EVERYTHING in your answer is relevant to the context of entity extraction.
And remember, it is ENTITY TYPES what we need.
`

const generateEntityTypesPrompt = entityTypesPromptHeader + `Return the entity types as a list of comma separated strings.
=====================================================================
EXAMPLE SECTION: The following section includes example output. These examples must be excluded from your answer.

EXAMPLE 1
Task: Determine the connections and organizational hierarchy within the specified community.
Text: Example_Org is a company in Sweden. Example_Org's director is Example_Chief_Operating_Officer. Example_Chief_Operating_Officer's main responsibility is to ensure the smooth operation of Example_Org.
RESPONSE:
organization, person
END OF EXAMPLE 1
=====================================================================

=====================================================================
REAL DATA: The following section is the real data. You should use only this real data to prepare your answer. Generate Entity Types only.
Task: {task}
Text: {input_text}
RESPONSE:`

const generateEntityTypesJSONPrompt = entityTypesPromptHeader + `Return the entity types in JSON format with "entities" as the key and the entity types as an array of strings.
=====================================================================
EXAMPLE SECTION: The following section includes example output. These examples must be excluded from your answer.

EXAMPLE 1
Task: Determine the connections and organizational hierarchy within the specified community.
Text: Example_Org is a company in Sweden. Example_Org's director is Example_Chief_Operating_Officer. Example_Chief_Operating_Officer's main responsibility is to ensure the smooth operation of Example_Org.
RESPONSE:
{"entities": ["organization", "person"]}
END OF EXAMPLE 1
=====================================================================

=====================================================================
REAL DATA: The following section is the real data. You should use only this real data to prepare your answer. Generate Entity Types only.
Task: {task}
Text: {input_text}
RESPONSE:
{"entities": [<entity_types>]}`

const entityRelationshipExamplesPrompt = `-Goal-
Given a text document that is potentially relevant to this activity and a list of entity types, identify all entities of those types from the text and all relationships among the identified entities.

-Steps-
1. Identify all entities. For each identified entity, extract the following information:
- entity_name: Name of the entity, capitalized
- entity_type: One of the following types: [{entity_types}]
- entity_description: Comprehensive description of the entity's attributes and activities
Format each entity as ("entity"{tuple_delimiter}<entity_name>{tuple_delimiter}<entity_type>{tuple_delimiter}<entity_description>)

2. From the entities identified in step 1, identify all pairs of (source_entity, target_entity) that are *clearly related* to each other.
For each pair of related entities, extract the following information:
- source_entity: name of the source entity, as identified in step 1
- target_entity: name of the target entity, as identified in step 1
- relationship_description: explanation as to why you think the source entity and the target entity are related to each other
- relationship_strength: an integer score between 1 to 10, indicating strength of the relationship between the source entity and target entity
Format each relationship as ("relationship"{tuple_delimiter}<source_entity>{tuple_delimiter}<target_entity>{tuple_delimiter}<relationship_description>{tuple_delimiter}<relationship_strength>)

3. Return output in {language} as a single list of all the entities and relationships identified in steps 1 and 2. Use **{record_delimiter}** as the list delimiter.

4. When finished, output {completion_delimiter}

-Real Data-
######################
entity_types: [{entity_types}]
text: {input_text}
######################
output:`

const untypedEntityRelationshipExamplesPrompt = `-Goal-
Given a text document that is potentially relevant to this activity, first identify all entities needed from the text in order to capture the information and ideas in the text.
Next, report all relationships among the identified entities.

-Steps-
1. Identify all entities. For each identified entity, extract the following information:
- entity_name: Name of the entity, capitalized
- entity_type: Suggest several labels or categories for the entity. The categories should not be specific, but should be as general as possible.
- entity_description: Comprehensive description of the entity's attributes and activities
Format each entity as ("entity"{tuple_delimiter}<entity_name>{tuple_delimiter}<entity_type>{tuple_delimiter}<entity_description>)

2. From the entities identified in step 1, identify all pairs of (source_entity, target_entity) that are *clearly related* to each other.
For each pair of related entities, extract the following information:
- source_entity: name of the source entity, as identified in step 1
- target_entity: name of the target entity, as identified in step 1
- relationship_description: explanation as to why you think the source entity and the target entity are related to each other
- relationship_strength: a numeric score indicating strength of the relationship between the source entity and target entity
Format each relationship as ("relationship"{tuple_delimiter}<source_entity>{tuple_delimiter}<target_entity>{tuple_delimiter}<relationship_description>{tuple_delimiter}<relationship_strength>)

3. Return output in {language} as a single list of all the entities and relationships identified in steps 1 and 2. Use **{record_delimiter}** as the list delimiter.

4. When finished, output {completion_delimiter}

-Real Data-
######################
text: {input_text}
######################
output:`

const generateReportRatingPrompt = `You are a helpful agent tasked with rating the importance of a given text in the context of the provided domain and persona. Your goal is to provide a rating description that reflects the relevance and significance of texts like this one to the specified domain and persona. Use your expertise to describe a float score between 0-10 that captures what makes a text important in this context. Only respond with the text description of the importance criteria. Use the provided example data format to guide your response. Ignore the content of the example data and only use the format.

# Example Data

Domain: Personal and Family Communication
Persona: You are an expert in Social Network Analysis with a focus on the Personal and Family Communication domain. You are skilled at mapping and interpreting complex social networks and identifying patterns of communication within communities.
Text: Subject: Re: Update
Hi Mom, the appointment went well and the doctor said everything looks fine. Talk soon.
Importance Criteria: A float score between 0-10 that represents the relevance of the text to family communication, health and well-being, with 1 being trivial or spam and 10 being highly relevant, meaningful and informative.

# Real Data

Domain: {domain}
Persona: {persona}
Text: {input_text}
Importance Criteria:`

const generateCommunityReporterRolePrompt = `You are an intelligent assistant that helps a human to analyze the information in a text document.
Given a sample text, determine the role of the agent that would be best suited to analyze the text and create a comprehensive report about it.
Use a format similar to the following:
A technologist reporter that is analyzing the small technology industry, given a list of entities that belong to the community as well as their relationships and optional associated claims. The report will be used to inform decision-makers about information associated with the community and their potential impact.

Domain: {domain}
Text: {input_text}
Role:`
